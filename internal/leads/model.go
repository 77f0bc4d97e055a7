package leads

import "time"

// Collection is the document collection leads are written to.
const Collection = "lead"

// Lead is a prospective customer's inquiry as persisted in the store.
// Optional fields are nil when the visitor left them blank.
type Lead struct {
	ID        string    `json:"id,omitempty" bson:"-" dynamodbav:"-"`
	Name      string    `json:"name" bson:"name" dynamodbav:"name"`
	Email     string    `json:"email" bson:"email" dynamodbav:"email"`
	Company   *string   `json:"company,omitempty" bson:"company,omitempty" dynamodbav:"company,omitempty"`
	Message   *string   `json:"message,omitempty" bson:"message,omitempty" dynamodbav:"message,omitempty"`
	Country   *string   `json:"country,omitempty" bson:"country,omitempty" dynamodbav:"country,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" dynamodbav:"created_at"`
}

// CreateLeadRequest represents the request body for creating a lead
type CreateLeadRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,max=254,email"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=5000"`
	Country *string `json:"country,omitempty" validate:"omitempty,max=100"`
}

// CreateLeadResponse is returned once the lead has been stored.
type CreateLeadResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// ErrorResponse carries a human readable failure reason.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
