package database

import (
	"log"
	"time"

	"taskhive-backend/shared/database/models"
)

// SeedDatabase seeds the database with demo data: three users, one
// organization with two projects, memberships and a starter todo tree.
func SeedDatabase() error {
	log.Println("🌱 Checking database seed data...")

	usersCreated, err := seedUsers()
	if err != nil {
		return err
	}

	orgsCreated, err := seedOrganization()
	if err != nil {
		return err
	}

	todosCreated, err := seedTodos()
	if err != nil {
		return err
	}

	if usersCreated > 0 || orgsCreated > 0 || todosCreated > 0 {
		log.Printf("✅ Database seeding completed (%d users, %d organizations, %d todos created)",
			usersCreated, orgsCreated, todosCreated)
	} else {
		log.Println("✅ Database seed data is up to date")
	}

	return nil
}

func strPtr(s string) *string { return &s }

const (
	seedUserJohn   = "seed-user-john"
	seedUserJane   = "seed-user-jane"
	seedUserMike   = "seed-user-mike"
	seedOrgAcme    = "seed-org-acme"
	seedProjectWeb = "seed-project-website"
	seedProjectApp = "seed-project-mobile"
)

func seedUsers() (int, error) {
	users := []models.User{
		{ID: seedUserJohn, Name: "John Doe", Email: "john.doe@example.com", AvatarURL: strPtr("https://i.pravatar.cc/150?img=1")},
		{ID: seedUserJane, Name: "Jane Smith", Email: "jane.smith@example.com", AvatarURL: strPtr("https://i.pravatar.cc/150?img=2")},
		{ID: seedUserMike, Name: "Mike Johnson", Email: "mike.johnson@example.com", AvatarURL: strPtr("https://i.pravatar.cc/150?img=3")},
	}

	created := 0
	for _, user := range users {
		var existing models.User
		result := DB.Where("id = ?", user.ID).First(&existing)
		if result.Error != nil {
			if err := DB.Create(&user).Error; err != nil {
				return created, err
			}
			created++
		}
	}

	return created, nil
}

func seedOrganization() (int, error) {
	var existing models.Organization
	if err := DB.Where("id = ?", seedOrgAcme).First(&existing).Error; err == nil {
		return 0, nil
	}

	org := models.Organization{
		ID:          seedOrgAcme,
		Name:        "Acme Inc",
		Description: strPtr("Demo organization"),
		CreatedBy:   strPtr(seedUserJohn),
	}
	if err := DB.Create(&org).Error; err != nil {
		return 0, err
	}

	projects := []models.Project{
		{ID: seedProjectWeb, Name: "Website Redesign", OrganizationID: seedOrgAcme, CreatedBy: strPtr(seedUserJohn)},
		{ID: seedProjectApp, Name: "Mobile App", OrganizationID: seedOrgAcme, CreatedBy: strPtr(seedUserJane)},
	}
	for _, project := range projects {
		if err := DB.Create(&project).Error; err != nil {
			return 0, err
		}
	}

	orgMembers := []models.OrganizationMember{
		{OrganizationID: seedOrgAcme, UserID: seedUserJohn, Role: models.RoleOwner},
		{OrganizationID: seedOrgAcme, UserID: seedUserJane, Role: models.RoleAdmin},
		{OrganizationID: seedOrgAcme, UserID: seedUserMike, Role: models.RoleMember},
	}
	for _, member := range orgMembers {
		if err := DB.Create(&member).Error; err != nil {
			return 0, err
		}
	}

	projectMembers := []models.ProjectMember{
		{ProjectID: seedProjectWeb, UserID: seedUserJohn, Role: models.RoleOwner},
		{ProjectID: seedProjectWeb, UserID: seedUserJane, Role: models.RoleMember},
		{ProjectID: seedProjectApp, UserID: seedUserJane, Role: models.RoleOwner},
		{ProjectID: seedProjectApp, UserID: seedUserMike, Role: models.RoleMember},
	}
	for _, member := range projectMembers {
		if err := DB.Create(&member).Error; err != nil {
			return 0, err
		}
	}

	return 1, nil
}

func seedTodos() (int, error) {
	var count int64
	DB.Model(&models.Todo{}).Where("project_id = ?", seedProjectWeb).Count(&count)
	if count > 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	parent := models.Todo{
		ID:        "seed-todo-wireframes",
		Text:      "Create wireframes for homepage",
		Completed: false,
		ProjectID: seedProjectWeb,
		CreatedBy: strPtr(seedUserJohn),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := DB.Create(&parent).Error; err != nil {
		return 0, err
	}

	subtasks := []models.Todo{
		{Text: "Sketch header and navigation", ProjectID: seedProjectWeb, ParentID: &parent.ID, CreatedBy: strPtr(seedUserJane), CreatedAt: now, UpdatedAt: now},
		{Text: "Sketch footer section", ProjectID: seedProjectWeb, ParentID: &parent.ID, CreatedBy: strPtr(seedUserJohn), CreatedAt: now, UpdatedAt: now},
	}

	created := 1
	for _, todo := range subtasks {
		if err := DB.Create(&todo).Error; err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}
