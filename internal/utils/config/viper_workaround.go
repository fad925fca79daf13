// Copyright 2024 The Dokuly Datatable Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/dokuly/datatable/internal/domains"
)

// ParseTableFiltersManually decodes tables[].filters from the config file.
//
// Viper lowercases map keys and treats dots as nesting, which breaks column keys such as
// "supplier.name", so the section is decoded with the plain yaml and json decoders.
func ParseTableFiltersManually(cfgFilePath string, cfg *domains.Config) error {
	ext := path.Ext(cfgFilePath)
	tmpCfg := &domains.FiltersOnlyConfig{}
	f, err := os.Open(cfgFilePath)
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing config file")
		}
	}()

	switch ext {
	case ".json":
		if err = json.NewDecoder(f).Decode(&tmpCfg); err != nil {
			return err
		}
	case ".yaml", ".yml":
		if err = yaml.NewDecoder(f).Decode(&tmpCfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported file extension \"%s\"", ext)
	}
	return setTableFilters(tmpCfg, cfg)
}

func setTableFilters(tmpCfg *domains.FiltersOnlyConfig, cfg *domains.Config) error {
	for _, tmpTable := range tmpCfg.Tables {
		if len(tmpTable.Filters) == 0 {
			continue
		}
		def := cfg.Table(tmpTable.Name)
		if def == nil {
			return fmt.Errorf("filters for unknown table \"%s\"", tmpTable.Name)
		}
		def.Filters = make(map[string]string, len(tmpTable.Filters))
		for key, raw := range tmpTable.Filters {
			v, err := filterValueString(raw)
			if err != nil {
				return fmt.Errorf("table \"%s\" filter \"%s\": %w", tmpTable.Name, key, err)
			}
			def.Filters[key] = v
		}
	}
	return nil
}

// filterValueString converts a decoded filter value into its textual form. Lists become the
// comma separated multiselect notation.
func filterValueString(raw any) (string, error) {
	if items, ok := raw.([]any); ok {
		values := make([]string, 0, len(items))
		for _, item := range items {
			s, err := cast.ToStringE(item)
			if err != nil {
				return "", err
			}
			values = append(values, s)
		}
		return strings.Join(values, ","), nil
	}
	return cast.ToStringE(raw)
}
