package status

type StatusResponse struct {
	RoutingMapSize int  `json:"routing_map_size"`
	TotalPeers     int  `json:"total_peers"`
	PublicPeers    int  `json:"public_peers"`
	ConnectedPeers int  `json:"connected_peers"`
	ShuttingDown   bool `json:"shutting_down"`
}

type PeersResponse struct {
	Peers []string `json:"peers"`
}
