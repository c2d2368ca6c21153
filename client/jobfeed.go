package client

import (
	"context"
	"encoding/xml"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// JobPosting is one public-sector job opening from the government open API.
type JobPosting struct {
	Serial       string `xml:"recrutPblntSn" json:"serial"`
	Institution  string `xml:"instNm" json:"institution"`
	Title        string `xml:"recrutPbancTtl" json:"title"`
	HireType     string `xml:"hireTypeNmLst" json:"hire_type"`
	Region       string `xml:"workRgnNmLst" json:"region"`
	BeginDate    string `xml:"pbancBgngYmd" json:"begin_date"`
	EndDate      string `xml:"pbancEndYmd" json:"end_date"`
	DetailURL    string `xml:"srcUrl" json:"detail_url"`
	NCSCategory  string `xml:"ncsCdNmLst" json:"ncs_category"`
	AcademicReq  string `xml:"acbgCondNmLst" json:"academic_req"`
	RecruitCount string `xml:"recrutNope" json:"recruit_count"`
}

type jobFeedResponse struct {
	XMLName    xml.Name     `xml:"response"`
	ResultCode string       `xml:"header>resultCode"`
	TotalCount int          `xml:"body>totalCount"`
	Items      []JobPosting `xml:"body>items>item"`
}

// JobFeed reads the public job-postings open API. The feed is marketing
// content only and never on the critical path, so callers are expected to
// treat failures as soft and fall back to cached data.
type JobFeed struct {
	http       *resty.Client
	serviceKey string
}

// NewJobFeed creates a feed reader. serviceKey is the issued open-API key.
func NewJobFeed(baseURL, serviceKey string) *JobFeed {
	return &JobFeed{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5 * time.Second),
		serviceKey: serviceKey,
	}
}

// Latest fetches up to count recent postings. Responses are XML.
func (f *JobFeed) Latest(ctx context.Context, count int) ([]JobPosting, error) {
	if count <= 0 {
		count = 10
	}

	resp, err := f.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"serviceKey": f.serviceKey,
			"numOfRows":  strconv.Itoa(count),
			"pageNo":     "1",
		}).
		Get("/list")
	if err != nil {
		return nil, netError(err)
	}
	if resp.IsError() {
		return nil, classify(resp.StatusCode(), nil)
	}

	var parsed jobFeedResponse
	if err := xml.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, &APIError{
			Kind:       KindServer,
			HTTPStatus: resp.StatusCode(),
			Message:    "채용 정보를 불러오지 못했습니다.",
			cause:      err,
		}
	}
	return parsed.Items, nil
}
