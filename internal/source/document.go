package source

import "github.com/TSOJO/isolate-wrapper/internal/language"

// Document is the serialisable form of a Unit, as stored in job files.
type Document struct {
	Code                string            `yaml:"code"`
	Language            language.Language `yaml:"language"`
	FileName            string            `yaml:"fileName,omitempty"`
	AQAInputs           []string          `yaml:"aqaasmInputs,omitempty"`
	AQAOutputs          []string          `yaml:"aqaasmOutputs,omitempty"`
	PythonIgnorePrompts bool              `yaml:"pythonIgnorePrompts,omitempty"`
}

// ToDocument captures the unit's persistent fields.
func (u *Unit) ToDocument() Document {
	return Document{
		Code:                u.Code,
		Language:            u.Lang,
		FileName:            u.FileName,
		AQAInputs:           u.AQAInputs,
		AQAOutputs:          u.AQAOutputs,
		PythonIgnorePrompts: u.PythonIgnorePrompts,
	}
}

// FromDocument builds an unprepared unit from its serialised form.
func FromDocument(doc Document) *Unit {
	u := NewUnit(doc.Code, doc.Language)
	if doc.FileName != "" {
		u.FileName = doc.FileName
	}
	u.AQAInputs = doc.AQAInputs
	u.AQAOutputs = doc.AQAOutputs
	u.PythonIgnorePrompts = doc.PythonIgnorePrompts
	return u
}
