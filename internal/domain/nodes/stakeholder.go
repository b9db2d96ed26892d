package nodes

type StakeholderGroup struct {
	ID       string `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name     string `gorm:"column:name;not null" json:"name" validate:"required"`
	Evidence string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`
}

func (StakeholderGroup) TableName() string { return "stakeholder_group" }

type Stakeholder struct {
	ID          string  `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name        string  `gorm:"column:name;not null" json:"name" validate:"required"`
	CategoryID  *string `gorm:"column:category_id;index" json:"category_id,omitempty" validate:"omitempty,min=1"`
	Definition  string  `gorm:"column:definition;type:text" json:"definition,omitempty"`
	Description string  `gorm:"column:description;type:text" json:"description,omitempty"`
	Evidence    string  `gorm:"column:evidence;type:text" json:"evidence,omitempty"`

	Category *StakeholderGroup `gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (Stakeholder) TableName() string { return "stakeholder" }

type Concern struct {
	ID          string `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name        string `gorm:"column:name;not null" json:"name" validate:"required"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
	Evidence    string `gorm:"column:evidence;type:text" json:"evidence,omitempty"`
}

func (Concern) TableName() string { return "concern" }
