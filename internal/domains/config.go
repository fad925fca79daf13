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

package domains

import (
	"sync"

	"github.com/dokuly/datatable/internal/storages/directory"
	"github.com/dokuly/datatable/internal/storages/s3"
	"github.com/dokuly/datatable/pkg/datatable"
)

var (
	Cfg  *Config
	once sync.Once
)

const (
	defaultStorageType  = "directory"
	DefaultServerListen = "127.0.0.1:8080"
	defaultPdfMarginMM  = 10
	defaultPdfDPI       = 96
	defaultPdfFontScale = 2
	defaultPdfQuality   = 90
	defaultPdfCellChars = 40
	defaultItemsPerPage = 25
)

func NewConfig() *Config {
	once.Do(
		func() {
			Cfg = &Config{
				Log: LogConfig{
					Level:  "info",
					Format: "text",
				},
				Storage: StorageConfig{
					Type:      defaultStorageType,
					S3:        s3.NewConfig(),
					Directory: directory.NewConfig(),
				},
				Export: Export{
					Pdf: PdfConfig{
						MarginMM:    defaultPdfMarginMM,
						DPI:         defaultPdfDPI,
						FontScale:   defaultPdfFontScale,
						JPEGQuality: defaultPdfQuality,
						CellChars:   defaultPdfCellChars,
					},
				},
				Server: Server{
					Listen: DefaultServerListen,
				},
			}
		},
	)
	return Cfg
}

type Config struct {
	Log     LogConfig          `mapstructure:"log" yaml:"log" json:"log"`
	Storage StorageConfig      `mapstructure:"storage" yaml:"storage" json:"storage"`
	Export  Export             `mapstructure:"export" yaml:"export" json:"export"`
	Server  Server             `mapstructure:"server" yaml:"server" json:"server"`
	Tables  []*TableDefinition `mapstructure:"tables" yaml:"tables" json:"tables,omitempty"`
}

// Table returns the definition with the given name or nil.
func (c *Config) Table(name string) *TableDefinition {
	for _, t := range c.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

type StorageConfig struct {
	Type      string            `mapstructure:"type" yaml:"type" json:"type,omitempty"`
	S3        *s3.Config        `mapstructure:"s3"  json:"s3,omitempty" yaml:"s3"`
	Directory *directory.Config `mapstructure:"directory" json:"directory,omitempty" yaml:"directory"`
}

type LogConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format,omitempty"`
	Level  string `mapstructure:"level" yaml:"level" json:"level,omitempty"`
}

type Export struct {
	Gzip bool `mapstructure:"gzip" yaml:"gzip" json:"gzip,omitempty"`
	// Pgzip compresses with the parallel gzip implementation. Implies Gzip.
	Pgzip bool      `mapstructure:"pgzip" yaml:"pgzip" json:"pgzip,omitempty"`
	Pdf   PdfConfig `mapstructure:"pdf" yaml:"pdf" json:"pdf"`
}

type PdfConfig struct {
	MarginMM    float64 `mapstructure:"margin_mm" yaml:"margin_mm" json:"margin_mm,omitempty"`
	DPI         float64 `mapstructure:"dpi" yaml:"dpi" json:"dpi,omitempty"`
	FontScale   int     `mapstructure:"font_scale" yaml:"font_scale" json:"font_scale,omitempty"`
	JPEGQuality int     `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality,omitempty"`
	CellChars   int     `mapstructure:"cell_chars" yaml:"cell_chars" json:"cell_chars,omitempty"`
}

type Server struct {
	Listen string `mapstructure:"listen" yaml:"listen" json:"listen,omitempty"`
}

type SourceConfig struct {
	// Type is one of json, ndjson, csv, postgres or demo.
	Type  string `mapstructure:"type" yaml:"type" json:"type,omitempty"`
	Path  string `mapstructure:"path" yaml:"path" json:"path,omitempty"`
	Dsn   string `mapstructure:"dsn" yaml:"dsn" json:"dsn,omitempty"`
	Query string `mapstructure:"query" yaml:"query" json:"query,omitempty"`
}

type DefaultSortConfig struct {
	ColumnNumber int                 `mapstructure:"column_number" yaml:"column_number" json:"column_number"`
	Order        datatable.SortOrder `mapstructure:"order" yaml:"order" json:"order"`
}

type FeaturesConfig struct {
	ColumnSelector bool `mapstructure:"column_selector" yaml:"column_selector" json:"column_selector,omitempty"`
	CSVDownload    bool `mapstructure:"csv_download" yaml:"csv_download" json:"csv_download,omitempty"`
	Pagination     bool `mapstructure:"pagination" yaml:"pagination" json:"pagination,omitempty"`
	Search         bool `mapstructure:"search" yaml:"search" json:"search,omitempty"`
}

type ColumnDefinition struct {
	Key           string               `mapstructure:"key" yaml:"key" json:"key"`
	Header        string               `mapstructure:"header" yaml:"header" json:"header,omitempty"`
	HeaderTooltip string               `mapstructure:"header_tooltip" yaml:"header_tooltip" json:"header_tooltip,omitempty"`
	FilterType    datatable.FilterType `mapstructure:"filter_type" yaml:"filter_type" json:"filter_type,omitempty"`
	FilterOptions []string             `mapstructure:"filter_options" yaml:"filter_options" json:"filter_options,omitempty"`
	// Filterable, IncludeInCSV and DefaultShowColumn are true when omitted.
	Filterable        *bool `mapstructure:"filterable" yaml:"filterable" json:"filterable,omitempty"`
	IncludeInCSV      *bool `mapstructure:"include_in_csv" yaml:"include_in_csv" json:"include_in_csv,omitempty"`
	DefaultShowColumn *bool `mapstructure:"default_show_column" yaml:"default_show_column" json:"default_show_column,omitempty"`
	MaxWidth          int   `mapstructure:"max_width" yaml:"max_width" json:"max_width,omitempty"`
	Hierarchical      bool  `mapstructure:"hierarchical" yaml:"hierarchical" json:"hierarchical,omitempty"`
	// Template is a text/template rendered with the row record as dot and sprig functions.
	Template       string `mapstructure:"template" yaml:"template" json:"template,omitempty"`
	CSVTemplate    string `mapstructure:"csv_template" yaml:"csv_template" json:"csv_template,omitempty"`
	SearchTemplate string `mapstructure:"search_template" yaml:"search_template" json:"search_template,omitempty"`
	// Mask is a go-masker kind: name, password, address, email, mobile, telephone, id or credit.
	Mask string `mapstructure:"mask" yaml:"mask" json:"mask,omitempty"`
}

type TableDefinition struct {
	Name           string              `mapstructure:"name" yaml:"name" json:"name"`
	Source         SourceConfig        `mapstructure:"source" yaml:"source" json:"source"`
	IDKey          string              `mapstructure:"id_key" yaml:"id_key" json:"id_key,omitempty"`
	ParentIDKey    string              `mapstructure:"parent_id_key" yaml:"parent_id_key" json:"parent_id_key,omitempty"`
	TreeData       bool                `mapstructure:"tree_data" yaml:"tree_data" json:"tree_data,omitempty"`
	ItemsPerPage   int                 `mapstructure:"items_per_page" yaml:"items_per_page" json:"items_per_page,omitempty"`
	DefaultSort    *DefaultSortConfig  `mapstructure:"default_sort" yaml:"default_sort" json:"default_sort,omitempty"`
	Where          string              `mapstructure:"where" yaml:"where" json:"where,omitempty"`
	NavigateColumn bool                `mapstructure:"navigate_column" yaml:"navigate_column" json:"navigate_column,omitempty"`
	Features       FeaturesConfig      `mapstructure:"features" yaml:"features" json:"features"`
	Columns        []*ColumnDefinition `mapstructure:"columns" yaml:"columns" json:"columns"`
	// Filters are initial filter values keyed by column key. Keys keep their case and dots,
	// so the section is decoded by ParseTableFiltersManually instead of viper.
	Filters map[string]string `mapstructure:"-" yaml:"-" json:"-"`
}

// PerPage returns the configured page size or the default one.
func (td *TableDefinition) PerPage() int {
	if td.ItemsPerPage > 0 {
		return td.ItemsPerPage
	}
	return defaultItemsPerPage
}

// FiltersOnlyConfig is used to decode the tables[].filters section without viper.
type FiltersOnlyConfig struct {
	Tables []struct {
		Name    string         `yaml:"name" json:"name"`
		Filters map[string]any `yaml:"filters" json:"filters"`
	} `yaml:"tables" json:"tables"`
}
