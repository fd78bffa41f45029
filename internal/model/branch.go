package model

// Branch is a store/warehouse location scoping product stock and user assignment.
type Branch struct {
	BaseModel
	Name    string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name" validate:"required"`
	Address string `gorm:"type:text" json:"address,omitempty"`
	Phone   string `gorm:"type:varchar(20)" json:"phone,omitempty"`
}
