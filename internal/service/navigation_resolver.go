package service

import "coursegate/internal/model"

// NextChapter 课程内按编排顺序的下一章，跨小节；最后一章返回 nil。
// 不跳过锁定章节，调用方导航后需要重新做访问判定。
func NextChapter(course *model.Course, chapterID string) *model.Chapter {
	if course == nil {
		return nil
	}
	_, si, ci := course.FindChapter(chapterID)
	if si < 0 {
		return nil
	}
	if ci+1 < len(course.Sections[si].Chapters) {
		return &course.Sections[si].Chapters[ci+1]
	}
	for s := si + 1; s < len(course.Sections); s++ {
		if chapters := course.Sections[s].Chapters; len(chapters) > 0 {
			return &chapters[0]
		}
	}
	return nil
}

// PreviousChapter 与 NextChapter 对称，跨小节时返回上一小节的最后一章
func PreviousChapter(course *model.Course, chapterID string) *model.Chapter {
	if course == nil {
		return nil
	}
	_, si, ci := course.FindChapter(chapterID)
	if si < 0 {
		return nil
	}
	if ci > 0 {
		return &course.Sections[si].Chapters[ci-1]
	}
	for s := si - 1; s >= 0; s-- {
		if chapters := course.Sections[s].Chapters; len(chapters) > 0 {
			return &chapters[len(chapters)-1]
		}
	}
	return nil
}
