package common

import "github.com/google/uuid"

// Entity is the minimal identity contract shared by every document this
// service reads or writes, source and materialised alike.
type Entity interface {
	GetID() uuid.UUID
}
