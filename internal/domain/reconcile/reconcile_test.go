package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/reconcile"
	. "github.com/smartystreets/goconvey/convey"
)

func str(s string) *string { return &s }
func i64(v int64) *int64   { return &v }
func intp(v int) *int      { return &v }

func TestDocuments(t *testing.T) {
	Convey("Given the W4 and I9 templates", t, func() {
		templates := []model.DocumentTemplate{
			{ID: 1, Name: "W4", RequiredForRole: str(model.RoleCandidate), CategoryID: i64(10)},
			{ID: 2, Name: "I9", RequiredForRole: str("hr")},
		}
		categories := []model.DocumentCategory{{ID: 10, Name: "Tax"}}

		Convey("When only W4 has a submitted instance", func() {
			submissions := []model.DocumentSubmission{
				{ID: 101, TemplateID: 1, Status: model.SubmissionSubmitted, FilePath: "uploads/w4.pdf"},
			}
			res := reconcile.Documents(templates, submissions, categories)

			Convey("Then there is one view per template in template order", func() {
				So(res.Views, ShouldHaveLength, 2)
				So(res.Views[0].TemplateID, ShouldEqual, 1)
				So(res.Views[1].TemplateID, ShouldEqual, 2)
				So(res.Dropped, ShouldBeEmpty)
			})

			Convey("Then W4 is in progress and keyed by the instance", func() {
				w4 := res.Views[0]
				So(w4.ID, ShouldEqual, model.InstanceViewID(101))
				So(w4.Status, ShouldEqual, model.StatusInProgress)
				So(w4.IsCompleted, ShouldBeFalse)
				So(*w4.SubmissionID, ShouldEqual, 101)
				So(*w4.FilePath, ShouldEqual, "uploads/w4.pdf")
				So(w4.IsRequired, ShouldBeTrue)
				So(w4.CategoryName, ShouldEqual, "Tax")
			})

			Convey("Then I9 is pending with no instance id", func() {
				i9 := res.Views[1]
				So(i9.ID, ShouldEqual, model.TemplateViewID(2))
				So(i9.SubmissionID, ShouldBeNil)
				So(i9.Status, ShouldEqual, model.StatusPending)
				So(i9.IsRequired, ShouldBeFalse)
				_, ok := i9.ID.InstanceID()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When no instances exist", func() {
			res := reconcile.Documents(templates, nil, nil)

			Convey("Then every view defaults to pending and not completed", func() {
				for _, v := range res.Views {
					So(v.Status, ShouldEqual, model.StatusPending)
					So(v.IsCompleted, ShouldBeFalse)
				}
			})
		})

		Convey("When a submission was rejected", func() {
			res := reconcile.Documents(templates, []model.DocumentSubmission{
				{ID: 7, TemplateID: 2, Status: model.SubmissionRejected, Notes: str("blurry scan")},
			}, nil)

			Convey("Then it is pending again and keeps the review notes", func() {
				i9 := res.Views[1]
				So(i9.Status, ShouldEqual, model.StatusPending)
				So(i9.Rejected, ShouldBeTrue)
				So(*i9.ReviewNotes, ShouldEqual, "blurry scan")
			})
		})

		Convey("When a submission has a file but is not approved", func() {
			res := reconcile.Documents(templates, []model.DocumentSubmission{
				{ID: 8, TemplateID: 1, Status: "archived", FilePath: "x.pdf"},
			}, nil)

			Convey("Then the file path alone does not complete it", func() {
				So(res.Views[0].Status, ShouldEqual, model.StatusPending)
				So(res.Views[0].IsCompleted, ShouldBeFalse)
			})
		})

		Convey("When an instance points at a missing template", func() {
			res := reconcile.Documents(templates, []model.DocumentSubmission{
				{ID: 300, TemplateID: 99, Status: model.SubmissionApproved},
			}, nil)

			Convey("Then it is dropped and reported", func() {
				So(res.Views, ShouldHaveLength, 2)
				So(res.Dropped, ShouldResemble, []int64{300})
			})
		})
	})

	Convey("Given no templates", t, func() {
		res := reconcile.Documents(nil, []model.DocumentSubmission{{ID: 1, TemplateID: 1}}, nil)

		Convey("Then the result is empty", func() {
			So(res.Views, ShouldBeEmpty)
			So(res.Dropped, ShouldResemble, []int64{1})
		})
	})
}

func TestTasks(t *testing.T) {
	Convey("Given task templates and duplicated instances", t, func() {
		templates := []model.OnboardingTask{
			{ID: 1, Title: "Laptop setup", AssigneeRole: model.RoleCandidate},
			{ID: 2, Title: "Badge photo", AssigneeRole: "hr"},
			{ID: 3, Title: "Sign handbook", AssigneeRole: model.RoleCandidate},
		}
		instances := []model.CandidateTask{
			{ID: 11, TaskID: 1, Status: model.TaskDone, CompletedAt: str("2024-01-03")},
			{ID: 12, TaskID: 1, Status: model.TaskPending},
			{ID: 13, TaskID: 2, Status: model.TaskInProgress, DueDate: str("2024-01-10")},
		}
		before := append([]model.CandidateTask(nil), instances...)

		res := reconcile.Tasks(templates, instances)

		Convey("Then the first matching instance wins", func() {
			So(res.Views[0].ID, ShouldEqual, model.InstanceViewID(11))
			So(res.Views[0].Status, ShouldEqual, model.StatusCompleted)
			So(res.Views[0].IsCompleted, ShouldBeTrue)
		})

		Convey("Then statuses and roles map through the fixed tables", func() {
			So(res.Views[1].Status, ShouldEqual, model.StatusInProgress)
			So(*res.Views[1].Due, ShouldEqual, "2024-01-10")
			So(res.Views[1].IsRequired, ShouldBeFalse)
			So(res.Views[2].Status, ShouldEqual, model.StatusPending)
			So(res.Views[2].IsRequired, ShouldBeTrue)
		})

		Convey("Then inputs are left untouched", func() {
			So(cmp.Diff(before, instances), ShouldBeEmpty)
		})

		Convey("Then every view refers to a known template", func() {
			So(res.Views, ShouldHaveLength, len(templates))
			known := map[int64]bool{1: true, 2: true, 3: true}
			for _, v := range res.Views {
				So(known[v.TemplateID], ShouldBeTrue)
			}
		})

		Convey("Then reconciling again yields a structurally equal result", func() {
			again := reconcile.Tasks(templates, instances)
			So(cmp.Diff(res, again), ShouldBeEmpty)
		})
	})

	Convey("Given an unknown backend status", t, func() {
		So(reconcile.TaskStatus("blocked"), ShouldEqual, model.StatusPending)
	})
}

func TestTraining(t *testing.T) {
	Convey("Given training modules", t, func() {
		modules := []model.TrainingModule{
			{ID: 1, Title: "Security Basics", DurationMinutes: intp(45)},
			{ID: 2, Title: "Compliance 101", DurationMinutes: intp(90)},
			{ID: 3, Title: "Team Intro"},
			{ID: 4, Title: "Technical Deep Dive", DurationMinutes: intp(150)},
		}
		progress := []model.TrainingProgress{
			{ID: 21, ModuleID: 2, Status: model.TrainingInProgress, CompletionPercentage: 40, DueDate: str("2024-02-01")},
			{ID: 22, ModuleID: 4, Status: model.TrainingCompleted, CompletionPercentage: 100},
		}

		res := reconcile.Training(modules, progress)

		Convey("Then display fields are derived from the module", func() {
			So(res.Views[0].Duration, ShouldEqual, "45m")
			So(res.Views[0].Difficulty, ShouldEqual, model.DifficultyBeginner)
			So(res.Views[0].Category, ShouldEqual, "Security")
			So(res.Views[1].Duration, ShouldEqual, "1h 30m")
			So(res.Views[1].Difficulty, ShouldEqual, model.DifficultyIntermediate)
			So(res.Views[1].Category, ShouldEqual, "Compliance")
			So(res.Views[2].DurationMinutes, ShouldEqual, 60)
			So(res.Views[2].Duration, ShouldEqual, "1h 0m")
			So(res.Views[2].Category, ShouldEqual, "Onboarding")
			So(res.Views[3].Difficulty, ShouldEqual, model.DifficultyAdvanced)
			So(res.Views[3].Category, ShouldEqual, "Technical Skills")
		})

		Convey("Then progress is merged and every module is required", func() {
			So(res.Views[1].Status, ShouldEqual, model.StatusInProgress)
			So(res.Views[1].Progress, ShouldEqual, 40)
			So(*res.Views[1].ProgressID, ShouldEqual, 21)
			So(res.Views[3].IsCompleted, ShouldBeTrue)
			So(res.Views[0].Status, ShouldEqual, model.StatusPending)
			So(res.Views[0].Progress, ShouldEqual, 0)
			for _, v := range res.Views {
				So(v.IsRequired, ShouldBeTrue)
			}
		})
	})
}
