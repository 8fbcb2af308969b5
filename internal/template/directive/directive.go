// Package directive reads hopplaconfig directive blocks. A block comes from
// a sibling "<name>.hopplaconfig" file, from the root "hopplaconfig" file or
// from a header at the very start of a rendered template file:
//
//	###hopplaconfig
//	fileName: main.go
//	hopplaconfig###
//
// Blocks are YAML documents; JSON is accepted as well.
package directive

import (
	"github.com/knadh/koanf/maps"
)

const (
	// RootFileName is the name of the run-level directive file at the
	// template root.
	RootFileName = "hopplaconfig"
	// FileSuffix marks a sibling directive file.
	FileSuffix = ".hopplaconfig"
	// HeaderStart opens a header directive.
	HeaderStart = "###hopplaconfig"
	// HeaderEnd closes a header directive.
	HeaderEnd = "hopplaconfig###"
)

// Block is a parsed directive block. Pointer booleans distinguish "not set"
// from false.
type Block struct {
	// FileName renames a file.
	FileName string `yaml:"fileName,omitempty"`
	// DirName renames a directory.
	DirName string `yaml:"dirName,omitempty"`
	// Raw copies the entry verbatim.
	Raw *bool `yaml:"raw,omitempty"`
	// Exclude drops the entry from the output.
	Exclude *bool `yaml:"exclude,omitempty"`
	// Generate is a hook expression producing generated copies.
	Generate string `yaml:"generate,omitempty"`

	// Input holds template defaults (root only).
	Input map[string]interface{} `yaml:"input,omitempty"`
	// RawGlobs replaces the raw glob list (root only).
	RawGlobs []string `yaml:"rawGlobs,omitempty"`
	// ExcludeGlobs replaces the exclude glob list (root only).
	ExcludeGlobs []string `yaml:"excludeGlobs,omitempty"`

	// Init runs before the working copy is created (root only).
	Init string `yaml:"init,omitempty"`
	// Prepare runs before the walk (root only).
	Prepare string `yaml:"prepare,omitempty"`
	// BeforeCopy runs between the walk and the copy (root only).
	BeforeCopy string `yaml:"beforeCopy,omitempty"`
	// Finalize runs last and sees the run error (root only).
	Finalize string `yaml:"finalize,omitempty"`
}

// IsEmpty reports whether no key is set.
func (b *Block) IsEmpty() bool {
	if b == nil {
		return true
	}
	return b.FileName == "" && b.DirName == "" && b.Raw == nil && b.Exclude == nil &&
		b.Generate == "" && len(b.Input) == 0 && b.RawGlobs == nil && b.ExcludeGlobs == nil &&
		b.Init == "" && b.Prepare == "" && b.BeforeCopy == "" && b.Finalize == ""
}

// RawSet returns the raw flag and whether it was set.
func (b *Block) RawSet() (value, ok bool) {
	if b == nil || b.Raw == nil {
		return false, false
	}
	return *b.Raw, true
}

// ExcludeSet returns the exclude flag and whether it was set.
func (b *Block) ExcludeSet() (value, ok bool) {
	if b == nil || b.Exclude == nil {
		return false, false
	}
	return *b.Exclude, true
}

// TargetName returns the rename target for a file or directory entry, or ""
// when none is set. Directories fall back to fileName.
func (b *Block) TargetName(isDir bool) string {
	if b == nil {
		return ""
	}
	if isDir && b.DirName != "" {
		return b.DirName
	}
	if b.FileName != "" {
		return b.FileName
	}
	return b.DirName
}

// Merge returns a new block with over applied on top of b. Keys set in over
// win; input maps are deep-merged.
func (b *Block) Merge(over *Block) *Block {
	merged := &Block{}
	if b != nil {
		*merged = *b
		merged.Input = copyMap(b.Input)
	}
	if over == nil {
		return merged
	}

	if over.FileName != "" {
		merged.FileName = over.FileName
	}
	if over.DirName != "" {
		merged.DirName = over.DirName
	}
	if over.Raw != nil {
		merged.Raw = over.Raw
	}
	if over.Exclude != nil {
		merged.Exclude = over.Exclude
	}
	if over.Generate != "" {
		merged.Generate = over.Generate
	}
	if len(over.Input) > 0 {
		if merged.Input == nil {
			merged.Input = map[string]interface{}{}
		}
		maps.Merge(copyMap(over.Input), merged.Input)
	}
	if over.RawGlobs != nil {
		merged.RawGlobs = append([]string(nil), over.RawGlobs...)
	}
	if over.ExcludeGlobs != nil {
		merged.ExcludeGlobs = append([]string(nil), over.ExcludeGlobs...)
	}
	if over.Init != "" {
		merged.Init = over.Init
	}
	if over.Prepare != "" {
		merged.Prepare = over.Prepare
	}
	if over.BeforeCopy != "" {
		merged.BeforeCopy = over.BeforeCopy
	}
	if over.Finalize != "" {
		merged.Finalize = over.Finalize
	}
	return merged
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	return maps.Copy(m)
}

// Bool returns a pointer to v, for building blocks in code.
func Bool(v bool) *bool {
	return &v
}
