package rpc

// Client calls the bridge endpoints of a relayer RPC server
type Client struct {
	url string
}

var _ BridgeClientInterface = (*Client)(nil)

func NewClient(url string) *Client {
	return &Client{url: url}
}
