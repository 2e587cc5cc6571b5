package models

// EnrollmentRecord is one row of the enrollment dataset: a single
// student-course registration. The csv tags match the upload template the
// university registrar exports ("Student Session", "Student Roll Number", ...).
type EnrollmentRecord struct {
	SessionLabel string `json:"sessionLabel" csv:"Student Session"`
	RollNumber   string `json:"rollNumber" csv:"Student Roll Number"`
	StudentName  string `json:"studentName" csv:"Student Name"`
	CourseCode   string `json:"courseCode" csv:"Subject Code"`
	CourseName   string `json:"courseName" csv:"Subject Name"`
}

// Course is the aggregate of all enrollment rows sharing a course code.
type Course struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Semester     string `json:"semester"`
	StudentCount int    `json:"studentCount"`
}

// EnrollmentSummary describes a loaded enrollment dataset.
type EnrollmentSummary struct {
	TotalRecords   int `json:"totalRecords"`
	UniqueStudents int `json:"uniqueStudents"`
	UniqueCourses  int `json:"uniqueCourses"`
}
