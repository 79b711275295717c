package domain

// Denomination is one note or coin face value in the cash till together with
// how many of it the drawer currently holds.
type Denomination struct {
	FaceValue      int64 `json:"faceValue"`
	AvailableCount int64 `json:"availableCount"`
}
