package tmx

import "encoding/xml"

// Header carries the attributes of the TMX <header> element and any <prop>
// elements directly inside it.
type Header struct {
	SrcLang             string      `json:"srclang,omitempty"`
	AdminLang           string      `json:"adminlang,omitempty"`
	DataType            string      `json:"datatype,omitempty"`
	SegType             string      `json:"segtype,omitempty"`
	OTMF                string      `json:"o-tmf,omitempty"`
	CreationTool        string      `json:"creationtool,omitempty"`
	CreationToolVersion string      `json:"creationtoolversion,omitempty"`
	CreationDate        string      `json:"creationdate,omitempty"`
	CreationID          string      `json:"creationid,omitempty"`
	ChangeDate          string      `json:"changedate,omitempty"`
	ChangeID            string      `json:"changeid,omitempty"`
	Properties          *Properties `json:"properties"`
}

func newHeader(attrs []xml.Attr) *Header {
	get := func(name string) string {
		v, _ := getAttr(name, attrs)
		return v
	}
	return &Header{
		SrcLang:             get("srclang"),
		AdminLang:           get("adminlang"),
		DataType:            get("datatype"),
		SegType:             get("segtype"),
		OTMF:                get("o-tmf"),
		CreationTool:        get("creationtool"),
		CreationToolVersion: get("creationtoolversion"),
		CreationDate:        get("creationdate"),
		CreationID:          get("creationid"),
		ChangeDate:          get("changedate"),
		ChangeID:            get("changeid"),
		Properties:          NewProperties(),
	}
}
