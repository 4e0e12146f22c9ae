package provisioning

import "errors"

var (
	// ErrPartial marks a multi-step operation that stopped half way, e.g. an
	// index that was deleted but could not be created again.
	ErrPartial = errors.New("partial failure")

	// ErrInvalidSpec marks a spec rejected before any cluster call.
	ErrInvalidSpec = errors.New("invalid spec")

	// ErrClusterRed is returned by Health when the cluster status is red.
	ErrClusterRed = errors.New("cluster health is red")
)
