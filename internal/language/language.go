// Package language enumerates the languages the judge can run.
package language

import (
	"github.com/TSOJO/isolate-wrapper/pkg/errors"
)

// Language identifies a supported submission language by its symbolic name.
type Language string

const (
	Python Language = "PYTHON"
	Cpp    Language = "CPLUSPLUS"
	AQAAsm Language = "AQAASM"
)

type attributes struct {
	fileExtension string
	uiName        string
}

var registry = map[Language]attributes{
	Python: {fileExtension: "py", uiName: "Python"},
	Cpp:    {fileExtension: "cpp", uiName: "C++"},
	AQAAsm: {fileExtension: "aqaasm", uiName: "AQA Assembly"},
}

// All lists the supported languages in a stable order.
func All() []Language {
	return []Language{Python, Cpp, AQAAsm}
}

// FromName resolves a symbolic name to a Language.
func FromName(name string) (Language, error) {
	lang := Language(name)
	if _, ok := registry[lang]; !ok {
		return "", errors.Newf(errors.LanguageNotSupported, "unknown language: %s", name)
	}
	return lang, nil
}

// Known reports whether the language is part of the registry.
func (l Language) Known() bool {
	_, ok := registry[l]
	return ok
}

// FileExtension returns the source file extension, without the dot.
func (l Language) FileExtension() string {
	return registry[l].fileExtension
}

// UIName returns the human-readable language name.
func (l Language) UIName() string {
	return registry[l].uiName
}

func (l Language) String() string {
	return string(l)
}

// UnmarshalYAML resolves a symbolic name, rejecting unknown languages.
func (l *Language) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	lang, err := FromName(name)
	if err != nil {
		return err
	}
	*l = lang
	return nil
}

// MarshalYAML emits the symbolic name.
func (l Language) MarshalYAML() (interface{}, error) {
	return string(l), nil
}
