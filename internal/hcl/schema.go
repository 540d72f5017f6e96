package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes all top-level blocks of one settings file.
type fileRoot struct {
	Server    *serverBlock    `hcl:"server,block"`
	Layout    *layoutBlock    `hcl:"layout,block"`
	Translate *translateBlock `hcl:"translate,block"`
	Rules     []*ruleBlock    `hcl:"rule,block"`
	Remain    hcl.Body        `hcl:",remain"`
}

// Pointer fields stay nil when the attribute is absent, so later files only
// override what they set.
type serverBlock struct {
	Port             *int      `hcl:"port,optional"`
	CORSOrigins      *[]string `hcl:"cors_origins,optional"`
	MaxUploadBytes   *int64    `hcl:"max_upload_bytes,optional"`
	TranslateTimeout *string   `hcl:"translate_timeout,optional"`
}

type layoutBlock struct {
	OriginX    *int `hcl:"origin_x,optional"`
	Spacing    *int `hcl:"spacing,optional"`
	RowY       *int `hcl:"row_y,optional"`
	RowSpacing *int `hcl:"row_spacing,optional"`
}

type translateBlock struct {
	DefaultFamily  *string `hcl:"default_family,optional"`
	UnwrapPrograms *bool   `hcl:"unwrap_programs,optional"`
}

// ruleBlock keeps its lists as raw expressions; they are evaluated by the
// Converter so the error names the rule and the attribute.
type ruleBlock struct {
	Name     string         `hcl:"name,label"`
	Class    string         `hcl:"class"`
	Types    hcl.Expression `hcl:"types,optional"`
	Keywords hcl.Expression `hcl:"keywords,optional"`
	Patterns hcl.Expression `hcl:"patterns,optional"`
}
