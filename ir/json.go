package ir

import "encoding/json"

// JSON serialization of the canonical table, used by `bindgen dump --json`.
// Links are written as qualified names rather than arena indices.

type jsonType struct {
	Name      string     `json:"name"`
	Namespace []string   `json:"namespace,omitempty"`
	Kind      string     `json:"kind"`
	Builtin   bool       `json:"builtin,omitempty"`
	Arguments []jsonType `json:"arguments,omitempty"`
}

type jsonRef struct {
	Type string `json:"type"`
	Mode string `json:"mode,omitempty"`
}

type jsonParam struct {
	Name string  `json:"name"`
	Type jsonRef `json:"type"`
}

type jsonMethod struct {
	Name    string      `json:"name"`
	Return  jsonRef     `json:"return"`
	Params  []jsonParam `json:"params,omitempty"`
	Private bool        `json:"private,omitempty"`
	Static  bool        `json:"static,omitempty"`
	Const   bool        `json:"const,omitempty"`
}

type jsonProperty struct {
	Name    string  `json:"name"`
	Type    jsonRef `json:"type"`
	Private bool    `json:"private,omitempty"`
	Static  bool    `json:"static,omitempty"`
	Value   *int64  `json:"value,omitempty"`
}

type jsonRecord struct {
	Type       *jsonType      `json:"type"`
	Unit       string         `json:"unit,omitempty"`
	Base       string         `json:"base,omitempty"`
	Interfaces []string       `json:"interfaces,omitempty"`
	Properties []jsonProperty `json:"properties,omitempty"`
	Methods    []jsonMethod   `json:"methods,omitempty"`
}

func toJSONType(t *Type) jsonType {
	jt := jsonType{
		Name:      t.Name(),
		Namespace: t.Namespace(),
		Kind:      t.Kind().String(),
		Builtin:   t.IsBuiltin(),
	}
	for _, a := range t.GenericArguments() {
		jt.Arguments = append(jt.Arguments, toJSONType(a))
	}
	return jt
}

func toJSONRef(r TypeRef) jsonRef {
	if r.IsVoid() {
		return jsonRef{Type: "void"}
	}
	ref := jsonRef{Type: r.Type.QualifiedName()}
	if r.Mode != ByValue {
		ref.Mode = r.Mode.String()
	}
	return ref
}

// MarshalJSON implements json.Marshaler for Table.
func (t *Table) MarshalJSON() ([]byte, error) {
	records := make([]jsonRecord, 0, len(t.records))
	for _, r := range t.records {
		jr := jsonRecord{Unit: r.Unit}
		if r.Type != nil {
			jt := toJSONType(r.Type)
			jr.Type = &jt
		}
		if base := t.Record(r.Base); base != nil {
			jr.Base = base.Name()
		}
		for _, id := range r.Interfaces {
			jr.Interfaces = append(jr.Interfaces, t.Record(id).Name())
		}
		for _, p := range r.Properties.All() {
			jr.Properties = append(jr.Properties, jsonProperty{
				Name:    p.Name,
				Type:    toJSONRef(p.Type),
				Private: p.IsPrivate,
				Static:  p.IsStatic,
				Value:   p.Value,
			})
		}
		for _, m := range r.Methods.All() {
			jm := jsonMethod{
				Name:    m.Name,
				Return:  toJSONRef(m.Return),
				Private: m.IsPrivate,
				Static:  m.IsStatic,
				Const:   m.IsConst,
			}
			for _, p := range m.Params {
				jm.Params = append(jm.Params, jsonParam{Name: p.Name, Type: toJSONRef(p.Type)})
			}
			jr.Methods = append(jr.Methods, jm)
		}
		records = append(records, jr)
	}
	return json.Marshal(struct {
		Records []jsonRecord `json:"records"`
	}{records})
}
