package mutate

import (
	"fmt"

	"github.com/cozy/prosemirror-go/model"
	"github.com/cozy/prosemirror-go/transform"

	"github.com/quillon/masonry/internal/block"
	"github.com/quillon/masonry/internal/schema"
)

// Result is a committed batch: the transformed document plus the
// inverted steps, ordered so that applying them to Doc restores the
// document the batch was applied to.
type Result struct {
	Doc      *model.Node
	Inverted []transform.Step
}

// Apply runs steps in order against doc. Documents are immutable
// values, so a failing step simply discards the partial chain; the
// caller's document is never touched.
func Apply(doc *model.Node, steps []transform.Step) (Result, error) {
	current := doc
	inverted := make([]transform.Step, 0, len(steps))
	for i, step := range steps {
		inv := step.Invert(current)
		res := step.Apply(current)
		if res.Failed != "" {
			return Result{}, fmt.Errorf("%w: step %d of %d: %s", block.ErrStepFailed, i+1, len(steps), res.Failed)
		}
		inverted = append(inverted, inv)
		current = res.Doc
	}
	for i, j := 0, len(inverted)-1; i < j; i, j = i+1, j-1 {
		inverted[i], inverted[j] = inverted[j], inverted[i]
	}
	return Result{Doc: current, Inverted: inverted}, nil
}

// insertStep builds a step inserting nodes at pos.
func insertStep(pos int, nodes []*model.Node) transform.Step {
	slice := model.NewSlice(model.FragmentFromArray(nodes), 0, 0)
	return transform.NewReplaceStep(pos, pos, slice)
}

// deleteStep builds a step deleting the range [from, to).
func deleteStep(from, to int) transform.Step {
	return transform.NewReplaceStep(from, to, model.NewSlice(model.FragmentFromArray(nil), 0, 0))
}

// replaceRangeStep builds a step replacing [from, to) with nodes.
func replaceRangeStep(from, to int, nodes []*model.Node) transform.Step {
	slice := model.NewSlice(model.FragmentFromArray(nodes), 0, 0)
	return transform.NewReplaceStep(from, to, slice)
}

// frameIDs reads the block ids off serialized frames.
func frameIDs(frames []*model.Node) []string {
	ids := make([]string, 0, len(frames))
	for _, frame := range frames {
		if id, ok := frame.Attrs[schema.AttrID].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
