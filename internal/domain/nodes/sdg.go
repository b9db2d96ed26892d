package nodes

// Objective is one of the sustainable-development pillars ("Env", "Soc", "Econ").
type Objective struct {
	ID          string `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name        string `gorm:"column:name" json:"name,omitempty"`
	Description string `gorm:"column:description;type:text" json:"description,omitempty"`
}

func (Objective) TableName() string { return "sd_objectives" }

// Goal is an SDG goal, e.g. "SDG1".
type Goal struct {
	ID                string  `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Name              string  `gorm:"column:name;not null" json:"name" validate:"required"`
	ParentObjectiveID *string `gorm:"column:parent_objective_id;index" json:"parent_objective_id,omitempty" validate:"omitempty,min=1"`

	ParentObjective *Objective `gorm:"foreignKey:ParentObjectiveID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (Goal) TableName() string { return "sdg_goal" }

// Target is an SDG target such as "1.1".
type Target struct {
	ID           string  `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	ShortName    string  `gorm:"column:short_name" json:"short_name,omitempty"`
	Description  string  `gorm:"column:description;type:text;not null" json:"description" validate:"required"`
	ParentGoalID *string `gorm:"column:parent_goal_id;index" json:"parent_goal_id,omitempty" validate:"omitempty,min=1"`

	ParentGoal *Goal `gorm:"foreignKey:ParentGoalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (Target) TableName() string { return "sdg_target" }

// Indicator is an official SDG indicator such as "1.1.1".
type Indicator struct {
	ID             string  `gorm:"column:id;primaryKey" json:"id" validate:"required"`
	Description    string  `gorm:"column:description;type:text;not null" json:"description" validate:"required"`
	Code           string  `gorm:"column:code" json:"code,omitempty"`
	ParentTargetID *string `gorm:"column:parent_target_id;index" json:"parent_target_id,omitempty" validate:"omitempty,min=1"`

	ParentTarget *Target `gorm:"foreignKey:ParentTargetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-" validate:"-"`
}

func (Indicator) TableName() string { return "sdg_indicator" }
