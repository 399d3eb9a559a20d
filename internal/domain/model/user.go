package model

import "time"

// User is an account keyed by a unique username and a unique wallet address.
type User struct {
	Username      string    `json:"username" bson:"username"`
	UserID        string    `json:"userId,omitempty" bson:"userId,omitempty"`
	WalletAddress string    `json:"walletAddress" bson:"walletAddress"`
	SBTAddress    string    `json:"sbtAddress,omitempty" bson:"sbtAddress,omitempty"`
	CreatedAt     time.Time `json:"-" bson:"createdAt"`
}

// HasSBT reports whether a soul-bound token was recorded for the user.
func (u User) HasSBT() bool {
	return u.SBTAddress != ""
}
