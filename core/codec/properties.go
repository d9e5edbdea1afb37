package codec

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/magiconair/properties"

	"github.com/FocuswithJustin/RosaArchive/core/errors"
	"github.com/FocuswithJustin/RosaArchive/core/model"
)

// Collection config keys.
const (
	KeyLanguages     = "languages"
	KeyMissingWidth  = "missing.image.width"
	KeyMissingHeight = "missing.image.height"
	KeyLabel         = "label"
	KeyDescription   = "description"
	KeyParent        = "parent"
	KeyChildren      = "children"
	KeyLogo          = "logo"
)

const configTable = "collection config"

// PropertiesCodec reads and writes a collection's config.properties.
// Absent keys take the values of model.DefaultCollectionConfig.
type PropertiesCodec struct{}

func (PropertiesCodec) Read(r io.Reader, errs *errors.Collector) *model.CollectionConfig {
	data, ok := readAll(r, configTable, errs)
	if !ok {
		return nil
	}
	p, err := properties.Load(data, properties.UTF8)
	if err != nil {
		errs.Add(&errors.ParseError{Format: configTable, Message: fmt.Sprintf("Malformed %s: %v", configTable, err), Err: err})
		return nil
	}
	p.DisableExpansion = true

	cfg := model.DefaultCollectionConfig()
	if v, ok := p.Get(KeyLanguages); ok {
		if langs := splitComma(v); len(langs) > 0 {
			cfg.Languages = langs
		}
	}
	cfg.MissingWidth = readDimension(p, KeyMissingWidth, cfg.MissingWidth, errs)
	cfg.MissingHeight = readDimension(p, KeyMissingHeight, cfg.MissingHeight, errs)
	cfg.Label = p.GetString(KeyLabel, "")
	cfg.Description = p.GetString(KeyDescription, "")
	cfg.Parent = p.GetString(KeyParent, "")
	cfg.Children = splitComma(p.GetString(KeyChildren, ""))
	cfg.Logo = p.GetString(KeyLogo, "")
	return &cfg
}

func readDimension(p *properties.Properties, key string, def int, errs *errors.Collector) int {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		errs.Add(&errors.ParseError{Format: configTable, Message: fmt.Sprintf("Invalid %s in %s: %q", key, configTable, v)})
		return def
	}
	return n
}

func (PropertiesCodec) Write(cfg *model.CollectionConfig, w io.Writer) error {
	if cfg == nil {
		return nil
	}
	p := properties.NewProperties()
	p.DisableExpansion = true
	set := func(key, value string) {
		if value != "" {
			p.Set(key, value)
		}
	}
	set(KeyLanguages, strings.Join(cfg.Languages, ","))
	if cfg.MissingWidth > 0 {
		set(KeyMissingWidth, strconv.Itoa(cfg.MissingWidth))
	}
	if cfg.MissingHeight > 0 {
		set(KeyMissingHeight, strconv.Itoa(cfg.MissingHeight))
	}
	set(KeyLabel, cfg.Label)
	set(KeyDescription, cfg.Description)
	set(KeyParent, cfg.Parent)
	set(KeyChildren, strings.Join(cfg.Children, ","))
	set(KeyLogo, cfg.Logo)

	if _, err := p.Write(w, properties.UTF8); err != nil {
		return errors.NewIO("write", configTable, err)
	}
	return nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
