package dispatch

import (
	"gorm.io/gorm"

	"github.com/SeSAC-PrePair/prepair/models"
)

// SeedQuestionBank fills the question table on first boot. Existing rows are
// left untouched so operators can curate the bank afterwards.
func SeedQuestionBank(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Question{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return db.Create(seededQuestions()).Error
}

func seededQuestions() []models.Question {
	return []models.Question{
		// common: behavioural starters
		{JobTrack: "common", Difficulty: 1, Content: "간단한 자기소개와 함께 이 직무에 지원한 이유를 말씀해주세요."},
		{JobTrack: "common", Difficulty: 1, Content: "최근 1년 동안 가장 몰입했던 경험은 무엇인가요?"},
		{JobTrack: "common", Difficulty: 2, Content: "팀원과 의견이 충돌했던 경험과 해결 과정을 이야기해주세요."},
		{JobTrack: "common", Difficulty: 2, Content: "실패했던 프로젝트에서 무엇을 배웠는지 설명해주세요."},
		{JobTrack: "common", Difficulty: 3, Content: "마감이 촉박한 상황에서 우선순위를 어떻게 정하는지 사례와 함께 말씀해주세요."},
		{JobTrack: "common", Difficulty: 3, Content: "5년 뒤 본인의 커리어 목표와 그를 위한 준비를 설명해주세요."},

		// backend
		{JobTrack: "backend", Difficulty: 1, Content: "REST API를 설계할 때 가장 중요하게 생각하는 원칙은 무엇인가요?"},
		{JobTrack: "backend", Difficulty: 2, Content: "데이터베이스 인덱스가 조회 성능을 높이는 원리와 남용 시의 비용을 설명해주세요."},
		{JobTrack: "backend", Difficulty: 2, Content: "트랜잭션의 격리 수준을 설명하고, 격리 수준이 낮을 때 생기는 문제를 예로 들어주세요."},
		{JobTrack: "backend", Difficulty: 3, Content: "트래픽이 급증하는 서비스에서 캐시를 도입한다면 어떤 전략을 쓰시겠습니까?"},
		{JobTrack: "backend", Difficulty: 3, Content: "장애가 발생했을 때 원인을 추적했던 경험과 재발 방지 대책을 이야기해주세요."},
		{JobTrack: "backend", Difficulty: 4, Content: "대용량 배치 처리와 실시간 처리의 아키텍처 차이를 설명하고 선택 기준을 말씀해주세요."},

		// frontend
		{JobTrack: "frontend", Difficulty: 1, Content: "브라우저가 화면을 렌더링하는 과정을 단계별로 설명해주세요."},
		{JobTrack: "frontend", Difficulty: 2, Content: "컴포넌트 상태 관리가 복잡해질 때 어떤 기준으로 구조를 정리하시나요?"},
		{JobTrack: "frontend", Difficulty: 3, Content: "웹 성능을 측정하고 개선했던 경험을 지표와 함께 이야기해주세요."},
		{JobTrack: "frontend", Difficulty: 3, Content: "접근성을 고려한 UI를 구현할 때 실천하는 방법을 말씀해주세요."},

		// data
		{JobTrack: "data", Difficulty: 1, Content: "분석 결과를 비전공자에게 전달할 때 신경 쓰는 부분은 무엇인가요?"},
		{JobTrack: "data", Difficulty: 2, Content: "가설 검증 실험을 설계했던 경험과 지표 선정 이유를 설명해주세요."},
		{JobTrack: "data", Difficulty: 3, Content: "데이터 품질 문제를 발견하고 파이프라인을 개선했던 사례를 이야기해주세요."},
	}
}

// SeedRewards fills the reward catalog on first boot.
func SeedRewards(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Reward{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	rewards := []models.Reward{
		{Name: "아메리카노 기프티콘", Vendor: "cafe", Cost: 500},
		{Name: "편의점 3,000원 상품권", Vendor: "cvs", Cost: 900},
		{Name: "모의면접 1회 이용권", Vendor: "prepair", Cost: 1500},
		{Name: "이력서 첨삭 쿠폰", Vendor: "prepair", Cost: 2000},
	}
	return db.Create(&rewards).Error
}
