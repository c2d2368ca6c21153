package controllers

import (
	"strings"
	"unicode"
)

// Evaluation holds the rubric breakdown for one answer. Each axis is scored
// 0-25 so the total stays on a 0-100 scale.
type Evaluation struct {
	Score        int
	Clarity      int
	Structure    int
	Specificity  int
	JobFit       int
	Strengths    string
	Improvements string
}

// structure markers: STAR-style connectors commonly coached for interview answers.
var structureMarkers = []string{
	"첫째", "둘째", "셋째", "먼저", "다음으로", "마지막으로",
	"예를 들어", "결과적으로", "그 결과", "상황", "과제", "행동", "결과",
	"because", "for example", "as a result", "first", "finally",
}

var trackKeywords = map[string][]string{
	"backend":  {"api", "데이터베이스", "서버", "트랜잭션", "캐시", "성능", "장애", "설계", "쿼리", "인덱스"},
	"frontend": {"컴포넌트", "렌더링", "상태", "브라우저", "접근성", "번들", "성능", "ux", "이벤트"},
	"data":     {"데이터", "모델", "분석", "지표", "실험", "파이프라인", "검증", "가설"},
	"common":   {"협업", "커뮤니케이션", "문제", "개선", "목표", "경험", "팀"},
}

// EvaluateAnswer scores an answer against the rubric deterministically.
// The axes: clarity (sentence economy), structure (connector usage),
// specificity (numbers and concrete detail), job fit (track vocabulary).
func EvaluateAnswer(track, answer string) Evaluation {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return Evaluation{
			Improvements: "답변이 비어 있습니다. 질문에 대한 생각을 짧게라도 적어보세요.",
		}
	}

	runes := []rune(trimmed)
	sentences := countSentences(trimmed)

	ev := Evaluation{}
	ev.Clarity = clarityScore(len(runes), sentences)
	ev.Structure = structureScore(trimmed)
	ev.Specificity = specificityScore(trimmed)
	ev.JobFit = jobFitScore(track, trimmed)
	ev.Score = ev.Clarity + ev.Structure + ev.Specificity + ev.JobFit

	ev.Strengths = strengthsComment(ev)
	ev.Improvements = improvementsComment(ev)
	return ev
}

func countSentences(s string) int {
	n := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			n++
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

// clarityScore rewards answers long enough to carry substance but penalizes
// run-on sentences.
func clarityScore(runeCount, sentences int) int {
	score := 0
	switch {
	case runeCount >= 600:
		score = 18
	case runeCount >= 300:
		score = 25
	case runeCount >= 120:
		score = 20
	case runeCount >= 40:
		score = 12
	default:
		score = 5
	}
	avg := runeCount / sentences
	if avg > 200 {
		score -= 5
	}
	if score < 0 {
		score = 0
	}
	return score
}

func structureScore(s string) int {
	lower := strings.ToLower(s)
	hits := 0
	for _, m := range structureMarkers {
		if strings.Contains(lower, m) {
			hits++
		}
	}
	switch {
	case hits >= 4:
		return 25
	case hits == 3:
		return 20
	case hits == 2:
		return 15
	case hits == 1:
		return 10
	default:
		return 5
	}
}

func specificityScore(s string) int {
	digits := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	score := 5
	if digits >= 2 {
		score += 10
	} else if digits == 1 {
		score += 5
	}
	if strings.Contains(s, "%") || strings.Contains(s, "개선") || strings.Contains(s, "배") {
		score += 5
	}
	if strings.Contains(s, "프로젝트") || strings.Contains(s, "경험") {
		score += 5
	}
	if score > 25 {
		score = 25
	}
	return score
}

func jobFitScore(track, s string) int {
	lower := strings.ToLower(s)
	keywords, ok := trackKeywords[strings.ToLower(track)]
	if !ok {
		keywords = trackKeywords["common"]
	}
	hits := 0
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			hits++
		}
	}
	// common vocabulary counts at half weight on top of track hits
	for _, k := range trackKeywords["common"] {
		if strings.Contains(lower, k) {
			hits++
			break
		}
	}
	score := hits * 6
	if score > 25 {
		score = 25
	}
	if score < 3 {
		score = 3
	}
	return score
}

func strengthsComment(ev Evaluation) string {
	var parts []string
	if ev.Clarity >= 20 {
		parts = append(parts, "답변 분량과 문장 호흡이 적절합니다.")
	}
	if ev.Structure >= 15 {
		parts = append(parts, "경험을 구조적으로 전달하고 있습니다.")
	}
	if ev.Specificity >= 15 {
		parts = append(parts, "수치와 구체적 사례가 설득력을 높입니다.")
	}
	if ev.JobFit >= 15 {
		parts = append(parts, "직무 관련 키워드를 잘 활용했습니다.")
	}
	if len(parts) == 0 {
		parts = append(parts, "질문의 의도를 놓치지 않고 답변을 시도했습니다.")
	}
	return strings.Join(parts, " ")
}

func improvementsComment(ev Evaluation) string {
	var parts []string
	if ev.Clarity < 15 {
		parts = append(parts, "핵심 문장을 2~3개로 정리해 분량을 보강해보세요.")
	}
	if ev.Structure < 15 {
		parts = append(parts, "상황-과제-행동-결과 순서로 경험을 구조화해보세요.")
	}
	if ev.Specificity < 15 {
		parts = append(parts, "성과를 숫자나 지표로 뒷받침하면 더 좋습니다.")
	}
	if ev.JobFit < 15 {
		parts = append(parts, "지원 직무의 기술 키워드를 답변에 녹여보세요.")
	}
	if len(parts) == 0 {
		parts = append(parts, "지금의 구성을 유지하면서 최신 경험으로 사례를 교체해보세요.")
	}
	return strings.Join(parts, " ")
}
