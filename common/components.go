package common

const (
	// RELAYER name to identify the relayer component (both directions)
	RELAYER = "relayer"
	// RPC name to identify the rpc component (implies relayer storage)
	RPC = "rpc"
)
