package filter_test

import (
	"testing"

	"github.com/okian/onboard/internal/domain/filter"
	"github.com/okian/onboard/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func i64(v int64) *int64 { return &v }

func TestDocuments(t *testing.T) {
	Convey("Given document views", t, func() {
		views := []model.Document{
			{Name: "W4 Form", Description: "Federal tax withholding", CategoryID: i64(1), Status: model.StatusPending},
			{Name: "I9", Description: "Employment eligibility", CategoryID: i64(2), Status: model.StatusCompleted},
			{Name: "NDA", Status: model.StatusInProgress},
		}

		Convey("When the query is empty", func() {
			So(filter.Query{}.IsZero(), ShouldBeTrue)
			So(filter.Documents(views, filter.Query{}), ShouldHaveLength, 3)
		})

		Convey("When searching in mixed case", func() {
			got := filter.Documents(views, filter.Query{Text: "TAX"})

			Convey("Then descriptions match case-insensitively", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Name, ShouldEqual, "W4 Form")
			})
		})

		Convey("When filtering by category key", func() {
			got := filter.Documents(views, filter.Query{Category: "2"})
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "I9")
			So(filter.Documents(views, filter.Query{Category: "All"}), ShouldHaveLength, 3)
		})

		Convey("When filtering by status", func() {
			got := filter.Documents(views, filter.Query{Status: model.StatusInProgress})
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "NDA")
		})

		Convey("When nothing matches", func() {
			So(filter.Documents(views, filter.Query{Text: "passport"}), ShouldBeEmpty)
		})
	})
}

func TestTasksAndTraining(t *testing.T) {
	Convey("Given task views", t, func() {
		views := []model.Task{
			{Title: "Laptop setup", Description: "Install VPN", Status: model.StatusCompleted},
			{Title: "Badge photo", Status: model.StatusPending},
		}

		Convey("Then category is ignored and text and status combine", func() {
			So(filter.Tasks(views, filter.Query{Category: "Security"}), ShouldHaveLength, 2)
			So(filter.Tasks(views, filter.Query{Text: "vpn", Status: model.StatusCompleted}), ShouldHaveLength, 1)
			So(filter.Tasks(views, filter.Query{Text: "vpn", Status: model.StatusPending}), ShouldBeEmpty)
		})
	})

	Convey("Given training views", t, func() {
		views := []model.TrainingModuleView{
			{Name: "Security Basics", Category: "Security"},
			{Name: "Team Intro", Category: "Onboarding"},
		}

		Convey("Then the category name filters", func() {
			got := filter.Training(views, filter.Query{Category: "security"})
			So(got, ShouldHaveLength, 1)
			So(got[0].Name, ShouldEqual, "Security Basics")
		})
	})
}
