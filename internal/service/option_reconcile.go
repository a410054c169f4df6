package service

import (
	"fmt"
	"sort"

	"github.com/lshigami/formkit/internal/dto"
	"github.com/lshigami/formkit/internal/model"
)

// optionPlan is the three-way diff between stored and requested options.
type optionPlan struct {
	Delete []uint
	Update []model.Option // only entries whose text changed
	Insert []model.Option // in request order
}

func (p optionPlan) empty() bool {
	return len(p.Delete) == 0 && len(p.Update) == 0 && len(p.Insert) == 0
}

// planOptionReconciliation diffs existing options against the incoming list
// keyed by id: ids missing from the request are deleted, shared ids are
// updated in place and entries without an id are inserted.
func planOptionReconciliation(existing []model.Option, incoming []dto.OptionInput) (optionPlan, error) {
	var plan optionPlan

	current := make(map[uint]model.Option, len(existing))
	for _, o := range existing {
		current[o.ID] = o
	}

	kept := make(map[uint]bool, len(incoming))
	for _, in := range incoming {
		if in.ID == nil {
			plan.Insert = append(plan.Insert, model.Option{Text: in.Text})
			continue
		}
		id := *in.ID
		if kept[id] {
			return optionPlan{}, NewInvalidInputError(fmt.Sprintf("option %d appears more than once", id))
		}
		old, ok := current[id]
		if !ok {
			return optionPlan{}, NewInvalidStateError(fmt.Sprintf("option %d does not belong to this question", id))
		}
		kept[id] = true
		if old.Text != in.Text {
			plan.Update = append(plan.Update, model.Option{ID: id, QuestionID: old.QuestionID, Text: in.Text})
		}
	}

	for id := range current {
		if !kept[id] {
			plan.Delete = append(plan.Delete, id)
		}
	}
	sort.Slice(plan.Delete, func(i, j int) bool { return plan.Delete[i] < plan.Delete[j] })
	return plan, nil
}
