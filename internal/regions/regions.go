// Package regions maps resolved city names to South Korean administrative
// divisions for regional breakdowns.
package regions

// Unknown is the catch-all region for cities absent from the table and for
// visits whose location could not be resolved.
const Unknown = "Unknown"

// Region member lists. Entries are the literal city strings produced by the
// GeoLite2 English city names, so matching is exact and case-sensitive.
var regionCities = map[string][]string{
	"서울": {
		"Seoul",
		"Gangnam-gu",
		"Seocho-gu",
		"Gwanak-gu",
		"Songpa-gu",
		"Dongjak-gu",
		"Seongdong-gu",
		"Yeongdeungpo-gu",
		"Yangcheon-gu",
		"Gwangjin-gu",
		"Mapo-gu",
		"Eunpyeong-gu",
		"Gangdong-gu",
		"Yongsan-gu",
		"Dongdaemun-gu",
		"Nowon-gu",
		"Guro-gu",
		"Seodaemun-gu",
		"Jungnang-gu",
		"Jongno-gu",
		"Seongbuk-gu",
		"Dobong-gu",
		"Geumcheon-gu",
		"Gangbuk-gu",
		"Kayang-dong",
		"Banpobondong",
	},
	"부산": {
		"Busan",
		"Busanjin-gu",
		"Geumjeong-gu",
		"Haeundae-gu",
		"Saha-gu",
		"Yeonje-gu",
	},
	"대구": {
		"Daegu",
		"Dalseo-gu",
		"Suseong-gu",
		"Dalseong-gun",
	},
	"인천": {
		"Incheon",
		"Icheon-si",
		"Yeonsu-gu",
		"Gyeyang-gu",
		"Bupyeong-gu",
		"Namdong-gu",
	},
	"광주": {"Gwangju", "Gwangsan-gu"},
	"대전": {"Daejeon", "Yuseong-gu"},
	"울산": {"Ulju-gun"},
	"세종": {"Sejong"},
	"경기도": {
		"Gyeonggi-do",
		"Seongnam-si",
		"Bundang-gu",
		"Bucheon-si",
		"Yongin-si",
		"Guri-si",
		"Paju-si",
		"Pyeongtaek-si",
		"Uijeongbu-si",
		"Siheung-si",
		"Uiwang-si",
		"Gimpo-si",
		"Ansan-si",
		"Goyang-si",
		"Gwangmyeong-si",
		"Hwaseong-si",
		"Anyang-si",
		"Pocheon-si",
		"Gwacheon-si",
		"Suwon",
		"Gunpo",
		"Namyangju",
		"Cheonan",
		"Yangp'yong",
		"Osan",
		"Gumi",
		"Paju",
		"Yeoju",
		"Gwangmyeong",
		"Yangju",
		"Anseong",
		"Areannamkwaengi",
	},
	"강원도": {
		"Donghae-si",
		"Inje-gun",
		"Chuncheon",
		"Wŏnju",
		"Gapyeong County",
		"Hongch'on",
		"Gangneung",
		"Cheorwon",
	},
	"충북": {
		"Cheongju-si",
		"Danyang-gun",
		"Chungju",
		"North Chungcheong",
	},
	"충남": {
		"Boryeong-si",
		"Geumsan-gun",
		"Asan",
	},
	"전북": {
		"Jeonju",
		"Gunsan",
		"Iksan",
	},
	"전남": {
		"Yeongam-gun",
		"Yeonggwang-gun",
		"Suncheon",
		"Gwangyang",
	},
	"경북": {
		"Uiryeong-gun",
		"Changwon",
		"Jinju",
		"Tongyeong",
		"Geoje",
		"Yangsan",
		"Gimhae",
	},
	"경남": {
		"Gyeongsan-si",
		"Yeongcheon-si",
		"Chilgok-gun",
		"Goryeong-gun",
		"Pohang",
		"Gimcheon",
		"Andong",
	},
	"제주": {
		"Jeju City",
		"Seogwipo",
		"Seogwipo-si",
	},
	// District names shared by several metropolitan cities cannot be
	// attributed to a single region, so they fold into Unknown.
	Unknown: {
		"None",
		"Seo-gu",
		"Nam-gu",
		"Dong-gu",
		"Buk-gu",
		"Gangseo-gu",
		"Junggu",
		"Jung-gu",
	},
}

var cityToRegion = buildIndex()

func buildIndex() map[string]string {
	index := make(map[string]string)
	for region, cities := range regionCities {
		for _, city := range cities {
			index[city] = region
		}
	}
	return index
}

// Resolve returns the administrative region for a city name, or Unknown
// when the city is not in the table. Matching is exact: the table carries
// the literal strings the geo collaborator emits.
func Resolve(city string) string {
	if region, ok := cityToRegion[city]; ok {
		return region
	}
	return Unknown
}

// Names returns the fixed set of region identifiers, Unknown included.
func Names() []string {
	names := make([]string, 0, len(regionCities))
	for region := range regionCities {
		names = append(names, region)
	}
	return names
}
