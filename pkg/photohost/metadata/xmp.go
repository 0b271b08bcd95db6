package metadata

import (
	"bytes"
	"encoding/xml"
	"regexp"
	"strconv"
	"strings"
)

// An XMP packet inside an image is one of three things: a parseable XML
// tree, raw bytes we can only pattern-match, or absent. The kind is explicit
// so every consumer dispatches on it rather than probing dynamically.
type packetKind int

const (
	packetAbsent packetKind = iota
	packetTree
	packetRawXML
)

type xmpPacket struct {
	kind packetKind
	tree *xmpNode
	raw  []byte
}

// xmpNode is a generic XML node; XMP trees nest arbitrarily and we only care
// about a handful of keys, so a schema-free parse is enough.
type xmpNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []xmpNode  `xml:",any"`
}

var (
	xmpOpen  = []byte("<x:xmpmeta")
	xmpClose = []byte("</x:xmpmeta>")

	rawRatingRe     = regexp.MustCompile(`(?i)xmp:Rating\s*=\s*"(-?\d+(?:\.\d+)?)"|<xmp:Rating>\s*(-?\d+(?:\.\d+)?)\s*</xmp:Rating>`)
	rawTitleRe      = regexp.MustCompile(`(?is)<dc:title>.*?<rdf:li[^>]*>(.*?)</rdf:li>`)
	rawCreateDateRe = regexp.MustCompile(`(?i)(?:xmp:CreateDate|photoshop:DateCreated)\s*=\s*"([^"]+)"|<(?:xmp:CreateDate|photoshop:DateCreated)>\s*([^<]+)\s*<`)
)

// locatePacket finds the first XMP packet in the scanned prefix and
// classifies it.
func locatePacket(data []byte) xmpPacket {
	start := bytes.Index(data, xmpOpen)
	if start < 0 {
		return xmpPacket{kind: packetAbsent}
	}
	end := bytes.Index(data[start:], xmpClose)
	if end < 0 {
		return xmpPacket{kind: packetAbsent}
	}
	raw := data[start : start+end+len(xmpClose)]

	var root xmpNode
	if err := xml.Unmarshal(raw, &root); err != nil {
		return xmpPacket{kind: packetRawXML, raw: raw}
	}
	return xmpPacket{kind: packetTree, tree: &root}
}

// xmpPass scans for an embedded XMP packet and pulls out rating, title and
// capture date only; everything else belongs to the EXIF passes.
func xmpPass(data []byte) Metadata {
	pkt := locatePacket(data)

	switch pkt.kind {
	case packetTree:
		return treeScan(pkt.tree)
	case packetRawXML:
		return rawScan(pkt.raw)
	default:
		return Metadata{}
	}
}

// treeScan walks the parsed node tree looking for any key ending in
// "rating" or "title" (case-insensitive), plus the CreateDate/DateCreated
// capture-time fallbacks. Recursion stops early once every field is found.
func treeScan(root *xmpNode) Metadata {
	var m Metadata
	walkNode(root, &m)
	return m
}

func walkNode(n *xmpNode, m *Metadata) bool {
	if done(m) {
		return true
	}

	for _, attr := range n.Attrs {
		applyKey(attr.Name.Local, attr.Value, m)
	}
	if done(m) {
		return true
	}

	for i := range n.Children {
		c := &n.Children[i]
		key := strings.ToLower(c.XMLName.Local)
		switch {
		case strings.HasSuffix(key, "rating") && m.Rating == nil:
			if s := nodeLiteral(c); s != "" {
				applyKey(c.XMLName.Local, s, m)
			}
		case strings.HasSuffix(key, "title") && m.Title == "":
			if s := nodeLiteral(c); s != "" {
				m.Title = strings.TrimSpace(s)
			}
		case (key == "createdate" || key == "datecreated") && m.TakenAt == nil:
			applyKey(c.XMLName.Local, nodeLiteral(c), m)
		}
		if walkNode(c, m) {
			return true
		}
	}
	return done(m)
}

func done(m *Metadata) bool {
	return m.Rating != nil && m.Title != "" && m.TakenAt != nil
}

// applyKey routes a discovered key/value pair onto the record.
func applyKey(key, value string, m *Metadata) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	lower := strings.ToLower(key)
	switch {
	case strings.HasSuffix(lower, "rating") && m.Rating == nil:
		if f, ok := numericString(value); ok {
			m.Rating = normalizeRating(f)
		}
	case strings.HasSuffix(lower, "title") && m.Title == "":
		m.Title = value
	case (lower == "createdate" || lower == "datecreated") && m.TakenAt == nil:
		if t, ok := parseXMPTime(value); ok {
			m.TakenAt = &t
		}
	}
}

// nodeLiteral returns the first literal string inside a node, unwrapping the
// Dublin-Core alt/language-list convention (Alt -> li) when present.
func nodeLiteral(n *xmpNode) string {
	if s := strings.TrimSpace(n.Text); s != "" {
		return s
	}
	for i := range n.Children {
		c := &n.Children[i]
		local := strings.ToLower(c.XMLName.Local)
		if local == "alt" || local == "li" || local == "seq" || local == "bag" {
			if s := nodeLiteral(c); s != "" {
				return s
			}
		}
	}
	return ""
}

// rawScan pattern-matches an XMP packet that failed to parse as XML.
func rawScan(raw []byte) Metadata {
	var m Metadata

	if g := firstGroup(rawRatingRe.FindSubmatch(raw)); g != "" {
		if f, ok := numericString(g); ok {
			m.Rating = normalizeRating(f)
		}
	}
	if match := rawTitleRe.FindSubmatch(raw); len(match) > 1 {
		if s := strings.TrimSpace(string(match[1])); s != "" {
			m.Title = s
		}
	}
	if g := firstGroup(rawCreateDateRe.FindSubmatch(raw)); g != "" {
		if t, ok := parseXMPTime(g); ok {
			m.TakenAt = &t
		}
	}

	return m
}

// firstGroup returns the first non-empty capture group of a submatch.
func firstGroup(match [][]byte) string {
	if len(match) < 2 {
		return ""
	}
	for _, g := range match[1:] {
		if len(g) > 0 {
			return string(g)
		}
	}
	return ""
}

func numericString(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
