package model

type Customer struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type Vehicle struct {
	ID       string `json:"id,omitempty" bson:"_id,omitempty"`
	Plate    string `json:"plate" bson:"plate"`
	Make     string `json:"make,omitempty" bson:"make,omitempty"`
	Model    string `json:"model,omitempty" bson:"model,omitempty"`
	Category string `json:"category" bson:"category"`
}
