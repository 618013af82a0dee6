package lifecycle

import (
	"fmt"

	"goldpawn/models"
)

type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionMarkSold   Action = "mark_sold"
	ActionMarkPawned Action = "mark_pawned"
	ActionDelete     Action = "delete"
)

type edge struct {
	from   models.ItemStatus
	action Action
}

type target struct {
	to models.ItemStatus
	// kind restricts the edge to one item type; empty means any.
	kind models.ItemType
}

var transitions = map[edge]target{
	{models.StatusPending, ActionApprove}:     {to: models.StatusApproved},
	{models.StatusRejected, ActionApprove}:    {to: models.StatusApproved},
	{models.StatusPending, ActionReject}:      {to: models.StatusRejected},
	{models.StatusApproved, ActionMarkSold}:   {to: models.StatusSold, kind: models.ItemTypeSell},
	{models.StatusApproved, ActionMarkPawned}: {to: models.StatusPawned, kind: models.ItemTypePawn},
}

// Next returns the status an item of the given kind reaches when action is applied in from.
// Delete is not a status edge and is always rejected here.
func Next(kind models.ItemType, from models.ItemStatus, action Action) (models.ItemStatus, error) {
	t, ok := transitions[edge{from: from, action: action}]
	if !ok {
		return from, fmt.Errorf("%w: cannot %s an item that is %s", ErrInvalidTransition, action, from)
	}
	if t.kind != "" && t.kind != kind {
		return from, fmt.Errorf("%w: %s requires a %s item, got %s", ErrKindMismatch, action, t.kind, kind)
	}
	return t.to, nil
}

// Available lists the status actions that apply to an item of kind in status from.
func Available(kind models.ItemType, from models.ItemStatus) []Action {
	actions := make([]Action, 0, 2)
	for _, action := range []Action{ActionApprove, ActionReject, ActionMarkSold, ActionMarkPawned} {
		if _, err := Next(kind, from, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}
