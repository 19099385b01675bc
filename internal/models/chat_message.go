package models

import "time"

// ChatMessage is one entry of a ride's hub-and-spoke chat. A nil RecipientID
// is a broadcast from the lead.
type ChatMessage struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RideID      uint      `json:"rideID" gorm:"not null;index"`
	SenderID    uint      `json:"senderID" gorm:"not null"`
	RecipientID *uint     `json:"recipientID"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"timestamp" gorm:"index"`
}

// TableName specifies the table name
func (ChatMessage) TableName() string {
	return "chat_messages"
}

func (m ChatMessage) IsBroadcast() bool {
	return m.RecipientID == nil
}
