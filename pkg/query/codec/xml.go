package codec

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"collectionbuilder/querybuilder/pkg/query"
)

// Element and attribute names of the stored query document:
//
//	<query>
//	  <clause node-id="1" operator="AND" xml:lang="en" deprecated="false"
//	          negated="false" operator-suppressed="true">
//	    <field>title</field>
//	    <value>test title</value>
//	  </clause>
//	  <clause-group node-id="2" operator="AND" ...>...</clause-group>
//	</query>
const (
	elemQuery  = "query"
	elemClause = string(query.KindClause)
	elemGroup  = string(query.KindGroup)
	elemField  = "field"
	elemValue  = "value"

	attrID         = "node-id"
	attrOperator   = "operator"
	attrDeprecated = "deprecated"
	attrNegated    = "negated"
	attrSuppressed = "operator-suppressed"
	attrLang       = "lang"

	xmlNamespace = "http://www.w3.org/XML/1998/namespace"
)

func encodeXML(root *query.Group) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	start := xml.StartElement{Name: xml.Name{Local: elemQuery}}
	if root.ID != "" {
		start.Attr = append(start.Attr, attr(attrID, root.ID))
	}
	if err := enc.EncodeToken(start); err != nil {
		return nil, err
	}
	for _, child := range root.Children {
		if err := encodeXMLNode(enc, child); err != nil {
			return nil, err
		}
	}
	if err := enc.EncodeToken(start.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeXMLNode(enc *xml.Encoder, n query.Node) error {
	attrs := n.Attrs()
	start := xml.StartElement{Name: xml.Name{Local: string(n.Kind())}}
	start.Attr = append(start.Attr,
		attr(attrID, attrs.ID),
		attr(attrOperator, string(attrs.Operator)),
	)
	if c, ok := n.(*query.Clause); ok {
		start.Attr = append(start.Attr, xml.Attr{
			Name:  xml.Name{Space: xmlNamespace, Local: attrLang},
			Value: c.Language,
		})
	}
	start.Attr = append(start.Attr,
		attr(attrDeprecated, strconv.FormatBool(attrs.Deprecated)),
		attr(attrNegated, strconv.FormatBool(attrs.Negated)),
		attr(attrSuppressed, strconv.FormatBool(attrs.OperatorSuppressed)),
	)

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	switch n := n.(type) {
	case *query.Clause:
		if err := encodeText(enc, elemField, n.Field); err != nil {
			return err
		}
		if err := encodeText(enc, elemValue, n.Value); err != nil {
			return err
		}
	case *query.Group:
		for _, child := range n.Children {
			if err := encodeXMLNode(enc, child); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(start.End())
}

func encodeText(enc *xml.Encoder, name, text string) error {
	return enc.EncodeElement(text, xml.StartElement{Name: xml.Name{Local: name}})
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func decodeXML(data []byte) (*query.Group, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing <%s> element", elemQuery)
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != elemQuery {
			return nil, fmt.Errorf("unexpected root element <%s>", start.Name.Local)
		}
		root := &query.Group{Attributes: query.Attributes{
			ID:       attrValue(start, attrID),
			Operator: query.OperatorAnd,
		}}
		if err := decodeXMLChildren(dec, root); err != nil {
			return nil, err
		}
		return root, nil
	}
}

// decodeXMLChildren reads child nodes of g until g's end element.
func decodeXMLChildren(dec *xml.Decoder, g *query.Group) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			attrs, err := decodeAttributes(tok)
			if err != nil {
				return err
			}
			switch tok.Name.Local {
			case elemClause:
				c := &query.Clause{Attributes: attrs, Language: attrValue(tok, attrLang)}
				if err := decodeClauseBody(dec, c); err != nil {
					return err
				}
				g.Children = append(g.Children, c)
			case elemGroup:
				child := &query.Group{Attributes: attrs}
				if err := decodeXMLChildren(dec, child); err != nil {
					return err
				}
				g.Children = append(g.Children, child)
			default:
				return fmt.Errorf("unexpected element <%s>", tok.Name.Local)
			}
		}
	}
}

func decodeClauseBody(dec *xml.Decoder, c *query.Clause) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			var text string
			if err := dec.DecodeElement(&text, &tok); err != nil {
				return err
			}
			switch tok.Name.Local {
			case elemField:
				c.Field = text
			case elemValue:
				c.Value = text
			}
		}
	}
}

func decodeAttributes(start xml.StartElement) (query.Attributes, error) {
	id := attrValue(start, attrID)
	if id == "" {
		return query.Attributes{}, fmt.Errorf("<%s> without %s", start.Name.Local, attrID)
	}
	op, err := parseOperator(attrValue(start, attrOperator))
	if err != nil {
		return query.Attributes{}, err
	}
	attrs := query.Attributes{ID: id, Operator: op}
	for name, dst := range map[string]*bool{
		attrDeprecated: &attrs.Deprecated,
		attrNegated:    &attrs.Negated,
		attrSuppressed: &attrs.OperatorSuppressed,
	} {
		v := attrValue(start, name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return query.Attributes{}, fmt.Errorf("node %q: attribute %s: %w", id, name, err)
		}
		*dst = b
	}
	return attrs, nil
}

// attrValue looks an attribute up by local name, ignoring its namespace.
func attrValue(start xml.StartElement, local string) string {
	for _, a := range start.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
