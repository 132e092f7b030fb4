package models

import "time"

// ServiceRequestStatusNew is the initial status of a service request.
const ServiceRequestStatusNew = "new"

// ServiceRequest is an inbound request for integration/consulting services.
type ServiceRequest struct {
	ID          string    `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string    `bson:"name" json:"name"`
	Email       string    `bson:"email" json:"email"`
	Company     string    `bson:"company,omitempty" json:"company,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	ProjectType string    `bson:"project_type" json:"projectType"`
	Description string    `bson:"description" json:"description"`
	Budget      string    `bson:"budget,omitempty" json:"budget,omitempty"`
	Timeline    string    `bson:"timeline,omitempty" json:"timeline,omitempty"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
