package domain

import "errors"

var (
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrSelfCall          = errors.New("cannot call yourself")
	ErrCallIDInUse       = errors.New("call id already in use")
	ErrCalleeOffline     = errors.New("callee is offline")
	ErrCalleeBusy        = errors.New("callee is busy")
	ErrCallNotFound      = errors.New("call not found")
	ErrInvalidCallState  = errors.New("call is not in a state that allows this")
	ErrCallerUnavailable = errors.New("caller is no longer connected")
)
