// Package objectstore talks to the local content-addressed object store
// (an IPFS-compatible HTTP daemon) over its HTTP API.
package objectstore

import "encoding/json"

// IdentityResponse is the body of POST /api/v0/id.
type IdentityResponse struct {
	ID string `json:"ID"`
}

// AddResponse is the body of POST /api/v0/add.
type AddResponse struct {
	Hash string `json:"Hash"`
	Name string `json:"Name"`
}

// PinLsResponse is the body of POST /api/v0/pin/ls. Keys is returned
// verbatim to the RPC caller without being reshaped.
type PinLsResponse struct {
	Keys json.RawMessage `json:"Keys"`
}

// PinAddResponse is the body of POST /api/v0/pin/add.
type PinAddResponse struct {
	Pins []string `json:"Pins"`
}

// PinRmResponse is the body of POST /api/v0/pin/rm.
type PinRmResponse struct {
	Pins []string `json:"Pins"`
}

// PinAction enumerates the three pin subcommands exposed over RPC.
type PinAction string

const (
	PinActionLs  PinAction = "ls"
	PinActionAdd PinAction = "add"
	PinActionRm  PinAction = "rm"
)
