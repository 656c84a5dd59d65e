package input

import "fieldbot/agent/internal/geo"

// Controller is the directional command surface the agent drives. Each
// primitive is idempotent while held; StopAll releases everything at once.
type Controller interface {
	MoveForward()
	MoveBackward()
	StrafeLeft()
	StrafeRight()
	TurnLeft()
	TurnRight()
	Jump()
	StopAll()
}

// Drive translates a heading into held primitives. Diagonals are composed
// from two primitives held simultaneously, so forward-left becomes forward
// plus strafe-left.
func Drive(ctrl Controller, dir geo.Direction) {
	if ctrl == nil {
		return
	}
	switch dir {
	case geo.DirForward:
		ctrl.MoveForward()
	case geo.DirBackward:
		ctrl.MoveBackward()
	case geo.DirLeft:
		ctrl.StrafeLeft()
	case geo.DirRight:
		ctrl.StrafeRight()
	case geo.DirForwardLeft:
		ctrl.MoveForward()
		ctrl.StrafeLeft()
	case geo.DirForwardRight:
		ctrl.MoveForward()
		ctrl.StrafeRight()
	case geo.DirBackwardLeft:
		ctrl.MoveBackward()
		ctrl.StrafeLeft()
	case geo.DirBackwardRight:
		ctrl.MoveBackward()
		ctrl.StrafeRight()
	}
}
