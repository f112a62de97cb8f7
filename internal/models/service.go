package models

import "gorm.io/gorm"

// Service represents one entry in the home-repair service catalog
type Service struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null;uniqueIndex"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    string `json:"duration"`    // e.g. "2-4 hours"
	PriceRange  string `json:"price_range"` // e.g. "₹500 - ₹2000"
	Icon        string `json:"icon"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// DefaultServices is the catalog seeded on first boot
var DefaultServices = []Service{
	{Name: "Electrical Repair", Description: "Complete electrical solutions for your equipment including wiring, outlets, and fixtures", Category: "Electrical", Duration: "2-4 hours", PriceRange: "₹500 - ₹2000", Icon: "⚡"},
	{Name: "Plumbing Services", Description: "Professional plumbing repairs and installations for all your water-related needs", Category: "Plumbing", Duration: "1-3 hours", PriceRange: "₹300 - ₹1500", Icon: "🔧"},
	{Name: "AC Repair & Service", Description: "Air conditioning repair, maintenance, and installation services", Category: "HVAC", Duration: "1-2 hours", PriceRange: "₹800 - ₹3000", Icon: "❄️"},
	{Name: "Equipment Appliance Repair", Description: "Repair services for washing machines, refrigerators, microwaves, and more", Category: "Appliances", Duration: "2-3 hours", PriceRange: "₹600 - ₹2500", Icon: "🏠"},
	{Name: "Carpentry Services", Description: "Furniture repair, custom woodwork, and carpentry solutions", Category: "Carpentry", Duration: "3-6 hours", PriceRange: "₹1000 - ₹5000", Icon: "🔨"},
	{Name: "Painting Services", Description: "Interior and exterior painting services for homes and offices", Category: "Painting", Duration: "4-8 hours", PriceRange: "₹1500 - ₹8000", Icon: "🎨"},
	{Name: "Cleaning Services", Description: "Deep cleaning, regular maintenance, and specialized cleaning services", Category: "Cleaning", Duration: "2-4 hours", PriceRange: "₹800 - ₹3000", Icon: "🧹"},
	{Name: "Equipment Maintenance", Description: "Regular maintenance and troubleshooting for industrial equipment", Category: "Maintenance", Duration: "1-3 hours", PriceRange: "₹1000 - ₹4000", Icon: "⚙️"},
}
