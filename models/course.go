package models

// Course is a catalog entry. TotalModules is the divisor for course progress.
type Course struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(64)"` // slug, e.g. "digital-marketing"
	Title        string         `json:"title" gorm:"not null"`
	TotalModules int            `json:"total_modules" gorm:"not null"`
	Modules      []CourseModule `json:"modules,omitempty" gorm:"foreignKey:CourseID"`

	Timestamps
}

// CourseModule ids are global and not necessarily sequential (101–105, 201–205, …).
type CourseModule struct {
	ID       int    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CourseID string `json:"course_id" gorm:"not null;index;type:varchar(64)"`
	Title    string `json:"title" gorm:"not null"`
	Position int    `json:"position" gorm:"not null"`
	VideoURL string `json:"video_url,omitempty" gorm:"type:text"`

	Timestamps
}

// DefaultCourses is seeded into the catalog on startup.
var DefaultCourses = []Course{
	{
		ID:           "digital-marketing",
		Title:        "Digital Marketing for Small Business",
		TotalModules: 5,
		Modules: []CourseModule{
			{ID: 1, Title: "Who be your customer?", Position: 1},
			{ID: 2, Title: "Setting up your business page", Position: 2},
			{ID: 3, Title: "Content wey dey sell", Position: 3},
			{ID: 4, Title: "Running small ads", Position: 4},
			{ID: 5, Title: "Tracking your results", Position: 5},
		},
	},
	{
		ID:           "pastry-business",
		Title:        "Pastry & Small Chops Business",
		TotalModules: 5,
		Modules: []CourseModule{
			{ID: 101, Title: "Kitchen basics and hygiene", Position: 1},
			{ID: 102, Title: "Meat pie and sausage roll", Position: 2},
			{ID: 103, Title: "Pricing your small chops", Position: 3},
			{ID: 104, Title: "Packaging and branding", Position: 4},
			{ID: 105, Title: "Getting event orders", Position: 5},
		},
	},
	{
		ID:           "importation",
		Title:        "Mini Importation",
		TotalModules: 5,
		Modules: []CourseModule{
			{ID: 201, Title: "Finding products that sell", Position: 1},
			{ID: 202, Title: "Choosing a supplier", Position: 2},
			{ID: 203, Title: "Shipping and clearing", Position: 3},
			{ID: 204, Title: "Pricing for profit", Position: 4},
			{ID: 205, Title: "Selling online", Position: 5},
		},
	},
}
