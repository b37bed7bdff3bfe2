package drawer

import (
	"github.com/askiada/go-kanaval/pkg/pipeline/measure"
	"github.com/askiada/go-kanaval/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// Reset forgets every step drawn so far.
	Reset()
	// AddStep adds a step to the pipeline drawer. Adding a step twice is not
	// an error.
	AddStep(stepName string) error
	// AddLink adds a link between parent and children steps.
	AddLink(parentStepName, childrenStepName string) error
	// SetStatus colours a step by outcome and sets its caption.
	SetStatus(stepName string, status model.Status, caption string) error
	// Draw creates a file with the pipeline graph.
	Draw() error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
