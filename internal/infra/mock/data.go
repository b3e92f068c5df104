// Package mock provides in-process stand-ins for the Supabase backend.
// The process falls back to this package when no backend is configured,
// so the dashboard stays demoable without credentials.
package mock

import (
	"time"

	"github.com/zenthra/zenthra-api/internal/domain"
)

// Credentials are the demo accounts accepted in mock mode.
var Credentials = map[string]string{
	"team.zenthra@gmail.com": "zenthra123",
	"admin@zenthra.com":      "admin123",
	"demo@zenthra.com":       "demo123",
}

// SampleUsers returns the seeded admin profiles.
func SampleUsers(now time.Time) []domain.UserProfile {
	return []domain.UserProfile{
		{
			ID:        "admin-1",
			Email:     "team.zenthra@gmail.com",
			FullName:  "Zenthra Admin",
			Role:      domain.RoleAdmin,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "admin-2",
			Email:     "admin@zenthra.com",
			FullName:  "Admin User",
			Role:      domain.RoleAdmin,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// SampleLeads returns the demo pipeline. Timestamps are relative to now
// so the dashboard always shows a recent-looking spread across every
// status and priority.
func SampleLeads(now time.Time) []domain.Lead {
	day := 24 * time.Hour
	return []domain.Lead{
		{
			ID:        "lead-1",
			Name:      "John Smith",
			Email:     "john.smith@techcorp.com",
			Company:   "TechCorp Solutions",
			Subject:   "Mobile App Development Inquiry",
			Message:   "Hi, we are looking to develop a React Native mobile application for our e-commerce platform. We need both iOS and Android versions with features like user authentication, product catalog, shopping cart, and payment integration. Could you provide a quote and timeline?",
			Status:    domain.StatusNew,
			Priority:  domain.PriorityHigh,
			Notes:     "Potential high-value client",
			CreatedAt: now.Add(-2 * day),
			UpdatedAt: now.Add(-2 * day),
		},
		{
			ID:        "lead-2",
			Name:      "Sarah Johnson",
			Email:     "sarah.j@startup.io",
			Company:   "StartupIO",
			Subject:   "Web Application Development",
			Message:   "We need a modern web application built with React.js for our SaaS platform. The app should include user dashboard, analytics, subscription management, and API integrations. Looking for a full-stack solution.",
			Status:    domain.StatusContacted,
			Priority:  domain.PriorityMedium,
			CreatedAt: now.Add(-5 * day),
			UpdatedAt: now.Add(-1 * day),
		},
		{
			ID:        "lead-3",
			Name:      "Michael Chen",
			Email:     "mchen@healthtech.com",
			Company:   "HealthTech Innovations",
			Subject:   "Healthcare Mobile App",
			Message:   "We want to create a healthcare mobile app for patient management. Features needed: appointment scheduling, medical records, telemedicine, and secure messaging. HIPAA compliance is essential.",
			Status:    domain.StatusQualified,
			Priority:  domain.PriorityHigh,
			Notes:     "Discussed requirements in detail. Ready to proceed with proposal.",
			CreatedAt: now.Add(-7 * day),
			UpdatedAt: now.Add(-3 * day),
		},
		{
			ID:        "lead-4",
			Name:      "Emily Rodriguez",
			Email:     "emily@financeapp.com",
			Company:   "FinanceApp Ltd",
			Subject:   "Fintech Application Development",
			Message:   "Looking for a team to build a comprehensive fintech application with features like budget tracking, investment portfolio, bill payments, and financial analytics. Need both web and mobile versions.",
			Status:    domain.StatusConverted,
			Priority:  domain.PriorityHigh,
			Notes:     "Project started. Contract signed.",
			CreatedAt: now.Add(-14 * day),
			UpdatedAt: now.Add(-7 * day),
		},
		{
			ID:        "lead-5",
			Name:      "David Wilson",
			Email:     "david.wilson@retailco.com",
			Company:   "RetailCo",
			Subject:   "E-commerce Platform Upgrade",
			Message:   "Our current e-commerce platform needs a complete overhaul. We want a modern, fast, and scalable solution with advanced features like AI recommendations, inventory management, and multi-vendor support.",
			Status:    domain.StatusNew,
			Priority:  domain.PriorityMedium,
			CreatedAt: now.Add(-1 * day),
			UpdatedAt: now.Add(-1 * day),
		},
		{
			ID:        "lead-6",
			Name:      "Lisa Thompson",
			Email:     "lisa@edutech.org",
			Company:   "EduTech Solutions",
			Subject:   "Educational Platform Development",
			Message:   "We need an online learning platform with video streaming, interactive quizzes, progress tracking, and certification system. The platform should support thousands of concurrent users.",
			Status:    domain.StatusContacted,
			Priority:  domain.PriorityMedium,
			CreatedAt: now.Add(-10 * day),
			UpdatedAt: now.Add(-5 * day),
		},
		{
			ID:        "lead-7",
			Name:      "Robert Kim",
			Email:     "robert@logistics.com",
			Subject:   "Logistics Management System",
			Message:   "We require a comprehensive logistics management system for tracking shipments, managing inventory, route optimization, and real-time updates. Integration with existing ERP system is needed.",
			Status:    domain.StatusQualified,
			Priority:  domain.PriorityLow,
			CreatedAt: now.Add(-21 * day),
			UpdatedAt: now.Add(-14 * day),
		},
		{
			ID:        "lead-8",
			Name:      "Amanda Foster",
			Email:     "amanda@realestate.com",
			Company:   "Foster Real Estate",
			Subject:   "Real Estate Management App",
			Message:   "Looking to develop a real estate management application with property listings, virtual tours, client management, and document handling. Both web and mobile versions required.",
			Status:    domain.StatusClosed,
			Priority:  domain.PriorityLow,
			Notes:     "Client decided to go with another vendor.",
			CreatedAt: now.Add(-30 * day),
			UpdatedAt: now.Add(-21 * day),
		},
	}
}
