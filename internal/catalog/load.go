package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
)

// LoadMode controls how errors are handled during catalog loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error codes shared with the CLI.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed

	ErrCodeInvalidResource = "E201" // Resource fields invalid
	ErrCodeInvalidRelation = "E202" // Relation fields invalid
	ErrCodeNoResources     = "E203" // Catalog declares nothing
)

// LoadError represents an error that occurred during catalog loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads every .cue file in dir as one CUE package and compiles the
// `resource` struct into a Catalog.
func Load(dir string, mode LoadMode) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	if inst := instances[0]; inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err, ErrCodeBuildFailed)}
	}

	return Compile(value, mode)
}

// LoadPath loads a catalog from a single .cue file or a directory.
func LoadPath(path string, mode LoadMode) (*Catalog, []error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Load(path, mode)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}}
	}
	value := cuecontext.New().CompileBytes(src, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err, ErrCodeBuildFailed)}
	}
	return Compile(value, mode)
}

// CompileString compiles catalog source held in memory.
func CompileString(src, filename string) (*Catalog, []error) {
	value := cuecontext.New().CompileString(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{formatCUEError(err, ErrCodeBuildFailed)}
	}
	return Compile(value, LoadModeFailFast)
}

// Compile extracts resources from a built CUE value.
func Compile(value cue.Value, mode LoadMode) (*Catalog, []error) {
	var errs []error
	cat := New()

	resources := value.LookupPath(cue.ParsePath("resource"))
	if !resources.Exists() {
		return cat, []error{&LoadError{Code: ErrCodeNoResources, Message: "no resources found in catalog", Pos: value.Pos()}}
	}

	iter, err := resources.Fields()
	if err != nil {
		return cat, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating resources: %v", err)}}
	}
	for iter.Next() {
		if err := compileResource(cat, iter.Label(), iter.Value()); err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return cat, errs
			}
		}
	}

	if len(cat.Resources) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoResources, Message: "no resources found in catalog", Pos: resources.Pos()})
	}
	return cat, errs
}

func compileResource(cat *Catalog, name string, v cue.Value) error {
	res := &Resource{Name: name, Relations: map[string]Relation{}}

	var err error
	if res.Table, err = optionalString(v, "table"); err != nil {
		return err
	}
	if res.Key, err = optionalString(v, "key"); err != nil {
		return err
	}

	rels := v.LookupPath(cue.ParsePath("relations"))
	if rels.Exists() {
		iter, err := rels.Fields()
		if err != nil {
			return formatCUEError(err, ErrCodeInvalidRelation)
		}
		for iter.Next() {
			rel, err := compileRelation(iter.Value())
			if err != nil {
				return err
			}
			res.Relations[iter.Label()] = rel
		}
	}

	if err := cat.Add(res); err != nil {
		code := ErrCodeInvalidResource
		if rels.Exists() {
			code = ErrCodeInvalidRelation
		}
		return &LoadError{Code: code, Message: err.Error(), Pos: v.Pos()}
	}
	return nil
}

func compileRelation(v cue.Value) (Relation, error) {
	var (
		rel Relation
		err error
	)

	kind, err := optionalString(v, "kind")
	if err != nil {
		return rel, err
	}
	if kind == "" {
		return rel, &LoadError{Code: ErrCodeInvalidRelation, Message: "kind is required", Pos: v.Pos()}
	}
	rel.Kind = Kind(kind)

	fields := []struct {
		name   string
		target *string
	}{
		{"table", &rel.Table},
		{"key", &rel.Key},
		{"foreign_key", &rel.ForeignKey},
		{"local_key", &rel.LocalKey},
		{"owner_key", &rel.OwnerKey},
		{"pivot", &rel.Pivot},
		{"pivot_local", &rel.PivotLocal},
		{"pivot_foreign", &rel.PivotForeign},
	}
	for _, f := range fields {
		if *f.target, err = optionalString(v, f.name); err != nil {
			return rel, err
		}
	}
	return rel, nil
}

// optionalString returns the string at path, or "" when it is absent.
func optionalString(v cue.Value, path string) (string, error) {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return "", nil
	}
	s, err := field.String()
	if err != nil {
		return "", &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("%s must be a string", path), Pos: field.Pos()}
	}
	return s, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error, code string) *LoadError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
