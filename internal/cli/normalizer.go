package cli

import (
	"github.com/Zhengnan817/consumables-dashboard/internal/config"
	"github.com/Zhengnan817/consumables-dashboard/internal/core"
	"github.com/Zhengnan817/consumables-dashboard/internal/normalize"
)

// NewNormalizer builds the normalizer from the configured header aliases,
// department aliases and exclusions. Invalid entries were rejected by
// Validate and are skipped here.
func NewNormalizer(cfg *config.Config) *normalize.Normalizer {
	headers := make(map[string]normalize.Field, len(cfg.HeaderAliases))
	for h, name := range cfg.HeaderAliases {
		if f, ok := normalize.ParseField(name); ok {
			headers[h] = f
		}
	}

	depts := core.NewDepartmentMapper(cfg.DeptExtraExclusions...)
	for raw, code := range cfg.DeptExtraAliases {
		if core.IsCanonical(code) {
			depts.Alias(raw, code)
		}
	}
	return normalize.New(normalize.NewSchema(headers), depts)
}
