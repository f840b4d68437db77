package exchange

import (
	"time"

	"github.com/felixgeelhaar/taskport/pkg/domain/project"
)

var exportDay = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureProjects() []project.Project {
	return []project.Project{
		{
			ID:          "p1",
			Name:        "Website Relaunch",
			Description: `He said "hi"`,
			StartDate:   day(2025, 6, 1),
			EndDate:     day(2025, 9, 30),
			Status:      project.ProjectActive,
			Progress:    40,
			Tasks: []project.Task{
				{
					ID:               "t1",
					ProjectID:        "p1",
					Name:             "Design mockups",
					Description:      "Landing page and pricing page mockups for review",
					AssignedTo:       []string{"alice", "bob"},
					ResponsibleParty: "carol",
					Contacts:         []string{"dave"},
					StartDate:        day(2025, 6, 2),
					DueDate:          day(2025, 6, 20),
					Duration:         18,
					Dependencies:     []string{},
					Status:           project.TaskInProgress,
					Remarks:          "waiting on brand guide",
				},
				{
					ID:               "t2",
					ProjectID:        "p1",
					Name:             "Build pages",
					Description:      "",
					AssignedTo:       []string{"erin"},
					ResponsibleParty: "",
					Contacts:         []string{},
					StartDate:        day(2025, 6, 21),
					DueDate:          day(2025, 7, 15),
					Duration:         24,
					Dependencies:     []string{"t1"},
					Status:           project.TaskNotStarted,
					Remarks:          "",
				},
			},
		},
		{
			ID:          "p2",
			Name:        "Office Move",
			Description: "Relocate to the new building, including network and furniture setup",
			StartDate:   day(2025, 8, 1),
			EndDate:     day(2025, 7, 1), // end before start must survive
			Status:      project.ProjectOnHold,
			Progress:    0,
			Tasks:       []project.Task{},
		},
	}
}
