// Package entity defines the records the import jobs move.
package entity

// Customer is one row of the customer import feed.
type Customer struct {
	ID        int    `gorm:"column:id;primaryKey" json:"id"`
	FirstName string `gorm:"column:first_name" json:"firstName"`
	LastName  string `gorm:"column:last_name" json:"lastName"`
	Email     string `gorm:"column:email" json:"email"`
	Gender    string `gorm:"column:gender" json:"gender"`
	ContactNo string `gorm:"column:contact_no" json:"contactNo"`
	Country   string `gorm:"column:country" json:"country"`
	DOB       string `gorm:"column:dob" json:"dob"`
}

// TableName returns the customers table.
func (Customer) TableName() string {
	return "customers"
}
