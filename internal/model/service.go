package model

// Service is an entry of the global service catalog.  It is independent of
// any branch and cannot be booked directly.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// BranchService links a service to a branch.  Its ID is the key that
// appointments reference through BranchServiceID; a service is only
// bookable through this branch-specific link.
//
// Fields:
//  ID          – unique link identifier.
//  BranchID    – branch offering the service.
//  ServiceID   – catalog service being offered.
//  BranchName  – denormalized branch name.
//  ServiceName – denormalized service name.
//  District    – district of the branch, used for regional weighting.
type BranchService struct {
	ID          int64  `json:"id"`
	BranchID    int64  `json:"branchId"`
	ServiceID   int64  `json:"serviceId"`
	BranchName  string `json:"branchName,omitempty"`
	ServiceName string `json:"serviceName"`
	District    string `json:"district"`
}

// BranchServiceInput is the payload for creating a branch-service link.
type BranchServiceInput struct {
	BranchID  int64 `json:"branchId"`
	ServiceID int64 `json:"serviceId"`
}

// BranchInput is the payload for creating a branch.
type BranchInput struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	District string `json:"district"`
	Province string `json:"province"`
}

// ServiceInput is the payload for creating a service.
type ServiceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
