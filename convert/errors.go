package convert

import "fmt"

// Stage names the pipeline step that failed.
type Stage string

const (
	StageExtract Stage = "extract"
	StageBind    Stage = "bind"
	StageLayout  Stage = "layout"
	StageRender  Stage = "render"
	StageOutput  Stage = "output"
)

// ConversionError reports which stage of converting Path failed.
type ConversionError struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
