package sections

// SnapshotScript is evaluated in page context. It returns the document
// element as a JSON string in the Node format: elements carry their local
// name, foreign namespace, attributes in source order and bounding client
// rect; text and comment nodes carry their data.
const SnapshotScript = `() => {
  const FOREIGN = {
    "http://www.w3.org/2000/svg": "svg",
    "http://www.w3.org/1998/Math/MathML": "math",
  };
  const walk = (node) => {
    switch (node.nodeType) {
      case Node.ELEMENT_NODE: {
        const r = node.getBoundingClientRect();
        const out = {
          t: "e",
          n: node.localName,
          r: { x: r.x, y: r.y, width: r.width, height: r.height },
        };
        const ns = FOREIGN[node.namespaceURI];
        if (ns) out.ns = ns;
        if (node.attributes.length > 0) {
          out.a = Array.from(node.attributes, (a) => [a.name, a.value]);
        }
        const kids = [];
        for (const child of node.childNodes) {
          const c = walk(child);
          if (c) kids.push(c);
        }
        if (kids.length > 0) out.c = kids;
        return out;
      }
      case Node.TEXT_NODE:
      case Node.CDATA_SECTION_NODE:
        return { t: "x", d: node.data };
      case Node.COMMENT_NODE:
        return { t: "m", d: node.data };
      default:
        return null;
    }
  };
  return JSON.stringify(walk(document.documentElement));
}`
