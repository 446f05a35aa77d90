package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/gamerzord/latihan-magang-lms/internal/model"
	"github.com/gamerzord/latihan-magang-lms/internal/repository"
	pkgerrors "github.com/gamerzord/latihan-magang-lms/pkg/errors"
)

// ── 内存数据源：所有 mock repo 共享，便于模拟预加载 ──

type mockStore struct {
	mu  sync.Mutex
	seq int

	users       map[string]*model.User
	courses     map[string]*model.Course
	lessons     map[string]*model.Lesson
	attachments map[string]*model.LessonAttachment
	completions map[string]*model.LessonCompletion // key: lessonID:studentID
	assignments map[string]*model.Assignment
	enrollments map[string]*model.Enrollment
	submissions map[string]*model.Submission
	conferences map[string]*model.Conference
	events      map[string]*model.ScheduleEvent
}

func newMockStore() *mockStore {
	return &mockStore{
		users:       make(map[string]*model.User),
		courses:     make(map[string]*model.Course),
		lessons:     make(map[string]*model.Lesson),
		attachments: make(map[string]*model.LessonAttachment),
		completions: make(map[string]*model.LessonCompletion),
		assignments: make(map[string]*model.Assignment),
		enrollments: make(map[string]*model.Enrollment),
		submissions: make(map[string]*model.Submission),
		conferences: make(map[string]*model.Conference),
		events:      make(map[string]*model.ScheduleEvent),
	}
}

func (s *mockStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

// stamp 模拟数据库默认时间戳，seq 保证排序稳定
func (s *mockStore) stamp(b *model.BaseModel) {
	s.seq++
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// newMockRepository 构造未绑定数据库的 Repository 聚合，Transaction 直接执行回调
func newMockRepository() (*repository.Repository, *mockStore) {
	st := newMockStore()
	return &repository.Repository{
		User:          &mockUserRepo{st},
		Course:        &mockCourseRepo{st},
		Lesson:        &mockLessonRepo{st},
		Attachment:    &mockAttachmentRepo{st},
		Completion:    &mockCompletionRepo{st},
		Assignment:    &mockAssignmentRepo{st},
		Enrollment:    &mockEnrollmentRepo{st},
		Submission:    &mockSubmissionRepo{st},
		Conference:    &mockConferenceRepo{st},
		ScheduleEvent: &mockScheduleEventRepo{st},
	}, st
}

// ── Mock UserRepository ──

type mockUserRepo struct{ st *mockStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, user.Email) {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = m.st.nextID("user")
	}
	m.st.stamp(&user.BaseModel)
	cp := *user
	m.st.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if u, ok := m.st.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, u := range m.st.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ExistsEmail(_ context.Context, email, excludeID string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, u := range m.st.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&user.BaseModel)
	cp := *user
	m.st.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var all []model.User
	kw := strings.ToLower(keyword)
	for _, u := range m.st.users {
		if role != "" && u.Role != role {
			continue
		}
		if kw != "" && !strings.Contains(strings.ToLower(u.Name), kw) && !strings.Contains(strings.ToLower(u.Email), kw) {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ st *mockStore }

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if course.ID == "" {
		course.ID = m.st.nextID("course")
	}
	m.st.stamp(&course.BaseModel)
	cp := *course
	cp.Teacher = nil
	m.st.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) load(id string) (*model.Course, error) {
	c, ok := m.st.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.StudentsCount, cp.LessonsCount, cp.AssignmentsCount = 0, 0, 0
	for _, e := range m.st.enrollments {
		if e.CourseID == id {
			cp.StudentsCount++
		}
	}
	for _, l := range m.st.lessons {
		if l.CourseID == id {
			cp.LessonsCount++
		}
	}
	for _, a := range m.st.assignments {
		if a.CourseID == id {
			cp.AssignmentsCount++
		}
	}
	if t, ok := m.st.users[cp.TeacherID]; ok {
		tc := *t
		cp.Teacher = &tc
	}
	return &cp, nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return m.load(id)
}

func (m *mockCourseRepo) GetByIDForUpdate(_ context.Context, id string) (*model.Course, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	c, ok := m.st.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCourseRepo) ExistsCode(_ context.Context, code, excludeID string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, c := range m.st.courses {
		if c.ID != excludeID && c.CourseCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter) ([]model.Course, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	enrolled := make(map[string]bool)
	if filter.StudentID != "" {
		for _, e := range m.st.enrollments {
			if e.StudentID == filter.StudentID {
				enrolled[e.CourseID] = true
			}
		}
	}
	var result []model.Course
	for id, c := range m.st.courses {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && !enrolled[id] {
			continue
		}
		loaded, _ := m.load(id)
		result = append(result, *loaded)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&course.BaseModel)
	cp := *course
	cp.Teacher = nil
	m.st.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.courses, id)
	return nil
}

func (m *mockCourseRepo) ListThumbnailPaths(_ context.Context) ([]string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var paths []string
	for _, c := range m.st.courses {
		if c.ThumbnailPath != nil {
			paths = append(paths, *c.ThumbnailPath)
		}
	}
	return paths, nil
}

// ── Mock LessonRepository ──

type mockLessonRepo struct{ st *mockStore }

func (m *mockLessonRepo) Create(_ context.Context, lesson *model.Lesson) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if lesson.ID == "" {
		lesson.ID = m.st.nextID("lesson")
	}
	m.st.stamp(&lesson.BaseModel)
	cp := *lesson
	cp.Course, cp.Attachments = nil, nil
	m.st.lessons[lesson.ID] = &cp
	return nil
}

func (m *mockLessonRepo) load(l *model.Lesson) model.Lesson {
	cp := *l
	if c, ok := m.st.courses[cp.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	cp.Attachments = attachmentsOf(m.st, cp.ID)
	return cp
}

func (m *mockLessonRepo) GetByID(_ context.Context, id string) (*model.Lesson, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	l, ok := m.st.lessons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(l)
	return &loaded, nil
}

func (m *mockLessonRepo) ExistsCode(_ context.Context, code, excludeID string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, l := range m.st.lessons {
		if l.ID != excludeID && l.LessonCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLessonRepo) List(_ context.Context, courseID string) ([]model.Lesson, error) {
	return m.ListByCourse(context.Background(), courseID)
}

func (m *mockLessonRepo) ListByCourse(_ context.Context, courseID string) ([]model.Lesson, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.Lesson
	for _, l := range m.st.lessons {
		if courseID != "" && l.CourseID != courseID {
			continue
		}
		result = append(result, m.load(l))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (m *mockLessonRepo) Update(_ context.Context, lesson *model.Lesson) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&lesson.BaseModel)
	cp := *lesson
	cp.Course, cp.Attachments = nil, nil
	m.st.lessons[lesson.ID] = &cp
	return nil
}

func (m *mockLessonRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.lessons, id)
	return nil
}

func attachmentsOf(st *mockStore, lessonID string) []model.LessonAttachment {
	result := []model.LessonAttachment{}
	for _, a := range st.attachments {
		if a.LessonID == lessonID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

// ── Mock AttachmentRepository ──

type mockAttachmentRepo struct{ st *mockStore }

func (m *mockAttachmentRepo) CreateBatch(_ context.Context, attachments []model.LessonAttachment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for i := range attachments {
		if attachments[i].ID == "" {
			attachments[i].ID = m.st.nextID("att")
		}
		m.st.stamp(&attachments[i].BaseModel)
		cp := attachments[i]
		cp.Lesson = nil
		m.st.attachments[cp.ID] = &cp
	}
	return nil
}

func (m *mockAttachmentRepo) GetByID(_ context.Context, id string) (*model.LessonAttachment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	a, ok := m.st.attachments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	if l, ok := m.st.lessons[cp.LessonID]; ok {
		lc := *l
		if c, ok := m.st.courses[lc.CourseID]; ok {
			cc := *c
			lc.Course = &cc
		}
		cp.Lesson = &lc
	}
	return &cp, nil
}

func (m *mockAttachmentRepo) ListByLesson(_ context.Context, lessonID string) ([]model.LessonAttachment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	return attachmentsOf(m.st, lessonID), nil
}

func (m *mockAttachmentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.attachments, id)
	return nil
}

func (m *mockAttachmentRepo) DeleteByLesson(_ context.Context, lessonID string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for id, a := range m.st.attachments {
		if a.LessonID == lessonID {
			delete(m.st.attachments, id)
		}
	}
	return nil
}

func (m *mockAttachmentRepo) ListFilePaths(_ context.Context) ([]string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var paths []string
	for _, a := range m.st.attachments {
		paths = append(paths, a.FilePath)
	}
	return paths, nil
}

// ── Mock CompletionRepository ──

type mockCompletionRepo struct{ st *mockStore }

func (m *mockCompletionRepo) Create(_ context.Context, c *model.LessonCompletion) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	key := c.LessonID + ":" + c.StudentID
	if _, ok := m.st.completions[key]; ok {
		return nil
	}
	if c.ID == "" {
		c.ID = m.st.nextID("done")
	}
	cp := *c
	m.st.completions[key] = &cp
	return nil
}

func (m *mockCompletionRepo) Delete(_ context.Context, lessonID, studentID string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.completions, lessonID+":"+studentID)
	return nil
}

func (m *mockCompletionRepo) ListLessonIDs(_ context.Context, studentID, courseID string) ([]string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var ids []string
	for _, c := range m.st.completions {
		if c.StudentID != studentID {
			continue
		}
		if l, ok := m.st.lessons[c.LessonID]; ok && l.CourseID == courseID {
			ids = append(ids, c.LessonID)
		}
	}
	return ids, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct{ st *mockStore }

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if a.ID == "" {
		a.ID = m.st.nextID("asg")
	}
	m.st.stamp(&a.BaseModel)
	cp := *a
	cp.Course = nil
	m.st.assignments[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) load(a *model.Assignment) model.Assignment {
	cp := *a
	if c, ok := m.st.courses[cp.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	return cp
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	a, ok := m.st.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(a)
	return &loaded, nil
}

func (m *mockAssignmentRepo) ExistsCode(_ context.Context, code, excludeID string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, a := range m.st.assignments {
		if a.ID != excludeID && a.AssignmentCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignmentRepo) List(ctx context.Context, courseID string) ([]model.Assignment, error) {
	return m.ListByCourse(ctx, courseID)
}

func (m *mockAssignmentRepo) ListByCourse(_ context.Context, courseID string) ([]model.Assignment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.Assignment
	for _, a := range m.st.assignments {
		if courseID != "" && a.CourseID != courseID {
			continue
		}
		result = append(result, m.load(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&a.BaseModel)
	cp := *a
	cp.Course = nil
	m.st.assignments[a.ID] = &cp
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.assignments, id)
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct{ st *mockStore }

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, x := range m.st.enrollments {
		if x.CourseID == e.CourseID && x.StudentID == e.StudentID {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if e.ID == "" {
		e.ID = m.st.nextID("enr")
	}
	m.st.stamp(&e.BaseModel)
	cp := *e
	cp.Course, cp.Student = nil, nil
	m.st.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) load(e *model.Enrollment) model.Enrollment {
	cp := *e
	if c, ok := m.st.courses[cp.CourseID]; ok {
		cc := *c
		cp.Course = &cc
	}
	if u, ok := m.st.users[cp.StudentID]; ok {
		uc := *u
		cp.Student = &uc
	}
	return cp
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	e, ok := m.st.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(e)
	return &loaded, nil
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, courseID, studentID, excludeID string) (bool, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, e := range m.st.enrollments {
		if e.ID != excludeID && e.CourseID == courseID && e.StudentID == studentID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) List(_ context.Context, filter repository.EnrollmentFilter) ([]model.Enrollment, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.st.enrollments {
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.TeacherID != "" {
			c, ok := m.st.courses[e.CourseID]
			if !ok || c.TeacherID != filter.TeacherID {
				continue
			}
		}
		result = append(result, m.load(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockEnrollmentRepo) CountByCourse(_ context.Context, courseID string) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var n int64
	for _, e := range m.st.enrollments {
		if e.CourseID == courseID {
			n++
		}
	}
	return n, nil
}

func (m *mockEnrollmentRepo) ListStudents(_ context.Context, courseID string) ([]model.User, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.User
	for _, e := range m.st.enrollments {
		if e.CourseID != courseID {
			continue
		}
		if u, ok := m.st.users[e.StudentID]; ok {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEnrollmentRepo) ListCourseIDsByStudent(_ context.Context, studentID string) ([]string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var ids []string
	for _, e := range m.st.enrollments {
		if e.StudentID == studentID {
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}

func (m *mockEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&e.BaseModel)
	cp := *e
	cp.Course, cp.Student = nil, nil
	m.st.enrollments[e.ID] = &cp
	return nil
}

func (m *mockEnrollmentRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.enrollments, id)
	return nil
}

// ── Mock SubmissionRepository ──

type mockSubmissionRepo struct{ st *mockStore }

func (m *mockSubmissionRepo) Create(_ context.Context, s *model.Submission) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, x := range m.st.submissions {
		if x.AssignmentID == s.AssignmentID && x.StudentID == s.StudentID {
			return pkgerrors.ErrDuplicateKey
		}
	}
	if s.ID == "" {
		s.ID = m.st.nextID("sub")
	}
	m.st.stamp(&s.BaseModel)
	cp := *s
	cp.Assignment, cp.Student = nil, nil
	m.st.submissions[s.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) load(s *model.Submission) model.Submission {
	cp := *s
	if a, ok := m.st.assignments[cp.AssignmentID]; ok {
		ac := *a
		if c, ok := m.st.courses[ac.CourseID]; ok {
			cc := *c
			ac.Course = &cc
		}
		cp.Assignment = &ac
	}
	if u, ok := m.st.users[cp.StudentID]; ok {
		uc := *u
		cp.Student = &uc
	}
	return cp
}

func (m *mockSubmissionRepo) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	s, ok := m.st.submissions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(s)
	return &loaded, nil
}

func (m *mockSubmissionRepo) GetByAssignmentAndStudent(_ context.Context, assignmentID, studentID string) (*model.Submission, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	for _, s := range m.st.submissions {
		if s.AssignmentID == assignmentID && s.StudentID == studentID {
			loaded := m.load(s)
			return &loaded, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionRepo) CountByAssignment(_ context.Context, assignmentID string) (int64, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var n int64
	for _, s := range m.st.submissions {
		if s.AssignmentID == assignmentID {
			n++
		}
	}
	return n, nil
}

func (m *mockSubmissionRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]model.Submission, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.Submission
	for _, s := range m.st.submissions {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.AssignmentID != "" && s.AssignmentID != filter.AssignmentID {
			continue
		}
		if filter.StudentID != "" && s.StudentID != filter.StudentID {
			continue
		}
		loaded := m.load(s)
		if filter.CourseID != "" && (loaded.Assignment == nil || loaded.Assignment.CourseID != filter.CourseID) {
			continue
		}
		if filter.TeacherID != "" && (loaded.Assignment == nil || loaded.Assignment.Course == nil || loaded.Assignment.Course.TeacherID != filter.TeacherID) {
			continue
		}
		result = append(result, loaded)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockSubmissionRepo) Update(_ context.Context, s *model.Submission) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&s.BaseModel)
	cp := *s
	cp.Assignment, cp.Student = nil, nil
	m.st.submissions[s.ID] = &cp
	return nil
}

func (m *mockSubmissionRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.submissions, id)
	return nil
}

func (m *mockSubmissionRepo) ListFilePaths(_ context.Context) ([]string, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var paths []string
	for _, s := range m.st.submissions {
		paths = append(paths, s.FilePath)
	}
	return paths, nil
}

// ── Mock ConferenceRepository ──

type mockConferenceRepo struct{ st *mockStore }

func (m *mockConferenceRepo) Create(_ context.Context, c *model.Conference) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if c.ID == "" {
		c.ID = m.st.nextID("conf")
	}
	m.st.stamp(&c.BaseModel)
	cp := *c
	cp.Course, cp.Teacher = nil, nil
	m.st.conferences[c.ID] = &cp
	return nil
}

func (m *mockConferenceRepo) load(c *model.Conference) model.Conference {
	cp := *c
	if course, ok := m.st.courses[cp.CourseID]; ok {
		cc := *course
		cp.Course = &cc
	}
	if u, ok := m.st.users[cp.TeacherID]; ok {
		uc := *u
		cp.Teacher = &uc
	}
	return cp
}

func (m *mockConferenceRepo) GetByID(_ context.Context, id string) (*model.Conference, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	c, ok := m.st.conferences[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := m.load(c)
	return &loaded, nil
}

func (m *mockConferenceRepo) List(_ context.Context, filter repository.ConferenceFilter) ([]model.Conference, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var allowed map[string]bool
	if filter.CourseIDs != nil {
		allowed = make(map[string]bool, len(filter.CourseIDs))
		for _, id := range filter.CourseIDs {
			allowed[id] = true
		}
	}
	var result []model.Conference
	for _, c := range m.st.conferences {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		if allowed != nil && !allowed[c.CourseID] {
			continue
		}
		result = append(result, m.load(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockConferenceRepo) Update(_ context.Context, c *model.Conference) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&c.BaseModel)
	cp := *c
	cp.Course, cp.Teacher = nil, nil
	m.st.conferences[c.ID] = &cp
	return nil
}

func (m *mockConferenceRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.conferences, id)
	return nil
}

// ── Mock ScheduleEventRepository ──

type mockScheduleEventRepo struct{ st *mockStore }

func (m *mockScheduleEventRepo) Create(_ context.Context, e *model.ScheduleEvent) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	if e.ID == "" {
		e.ID = m.st.nextID("evt")
	}
	m.st.stamp(&e.BaseModel)
	cp := *e
	m.st.events[e.ID] = &cp
	return nil
}

func (m *mockScheduleEventRepo) GetByIDForUser(_ context.Context, id, userID string) (*model.ScheduleEvent, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	e, ok := m.st.events[id]
	if !ok || e.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *mockScheduleEventRepo) ListByUser(_ context.Context, userID string) ([]model.ScheduleEvent, error) {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	var result []model.ScheduleEvent
	for _, e := range m.st.events {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockScheduleEventRepo) Update(_ context.Context, e *model.ScheduleEvent) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	m.st.stamp(&e.BaseModel)
	cp := *e
	m.st.events[e.ID] = &cp
	return nil
}

func (m *mockScheduleEventRepo) Delete(_ context.Context, id string) error {
	m.st.mu.Lock()
	defer m.st.mu.Unlock()
	delete(m.st.events, id)
	return nil
}
