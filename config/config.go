package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// TomlSchool represents a school entry from TOML
type TomlSchool struct {
	Name string `toml:"name"`
	Code string `toml:"code"`
}

// TomlCategory represents an issue category entry from TOML
type TomlCategory struct {
	Name string `toml:"name"`
	Icon string `toml:"icon,omitempty"`
}

// TomlConfig represents the top-level configuration
type TomlConfig struct {
	Schools    []TomlSchool   `toml:"schools"`
	Categories []TomlCategory `toml:"categories"`
}

func LoadConfig(path string) (*TomlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config TomlConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return &config, nil
}

// HasSchool reports whether code is a configured school code.
func (c *TomlConfig) HasSchool(code string) bool {
	for _, s := range c.Schools {
		if s.Code == code {
			return true
		}
	}
	return false
}

// HasCategory reports whether name is a configured category.
func (c *TomlConfig) HasCategory(name string) bool {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return true
		}
	}
	return false
}

// Default returns the built-in school and category lists used when no config
// file is provided.
func Default() *TomlConfig {
	return &TomlConfig{
		Schools: []TomlSchool{
			{Name: "Baruch College", Code: "baruch"},
			{Name: "Borough of Manhattan Community College", Code: "bmcc"},
			{Name: "Bronx Community College", Code: "bronx community"},
			{Name: "Brooklyn College", Code: "brooklyn"},
			{Name: "City College", Code: "city"},
			{Name: "College of Staten Island", Code: "staten island"},
			{Name: "Guttman Community College", Code: "guttman"},
			{Name: "Hostos Community College", Code: "hostos"},
			{Name: "Hunter College", Code: "hunter"},
			{Name: "John Jay College of Criminal Justice", Code: "john jay"},
			{Name: "Kingsborough Community College", Code: "kingsborough"},
			{Name: "LaGuardia Community College", Code: "laguardia"},
			{Name: "Lehman College", Code: "lehman"},
			{Name: "Medgar Evers College", Code: "medgar evers"},
			{Name: "New York City College of Technology", Code: "city tech"},
			{Name: "Queens College", Code: "queens"},
			{Name: "Queens Community College", Code: "queens community"},
			{Name: "York College", Code: "york"},
		},
		Categories: []TomlCategory{
			{Name: "Academic Issues", Icon: "📚"},
			{Name: "Facilities", Icon: "🏢"},
			{Name: "Technology", Icon: "💻"},
			{Name: "Safety", Icon: "🛡️"},
			{Name: "Student Services", Icon: "🎓"},
		},
	}
}
