// Package user_agent classifies User-Agent strings into OS family, browser
// family, device class and bot status using embedded regex rule tables.
package user_agent

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"go.elara.ws/pcre"
	"gopkg.in/yaml.v3"
)

// UserAgent is the parsed classification of a raw User-Agent string.
type UserAgent struct {
	UserAgent string
	OS        string
	Browser   string
	Mobile    bool
	Desktop   bool
	Bot       bool
}

//go:embed database/bots.yml
//go:embed database/oss.yml
//go:embed database/browsers.yml
var databaseFiles embed.FS

// BrowserEntry is one rule in browsers.yml.
type BrowserEntry struct {
	Regex   string `yaml:"regex"`
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// OSEntry is one rule in oss.yml.
type OSEntry struct {
	Regex string `yaml:"regex"`
	Name  string `yaml:"name"`
}

// BotEntry is one rule in bots.yml.
type BotEntry struct {
	Regex string `yaml:"regex"`
	Name  string `yaml:"name"`
}

type regexCache struct {
	compiled map[string]*pcre.Regexp
	mutex    sync.RWMutex
}

func newRegexCache() *regexCache {
	return &regexCache{compiled: make(map[string]*pcre.Regexp)}
}

func (rc *regexCache) get(pattern string) (*pcre.Regexp, error) {
	rc.mutex.RLock()
	if regex, exists := rc.compiled[pattern]; exists {
		rc.mutex.RUnlock()
		return regex, nil
	}
	rc.mutex.RUnlock()

	rc.mutex.Lock()
	defer rc.mutex.Unlock()

	if regex, exists := rc.compiled[pattern]; exists {
		return regex, nil
	}

	regex, err := pcre.Compile(pattern)
	if err != nil {
		return nil, err
	}
	rc.compiled[pattern] = regex
	return regex, nil
}

var (
	parser *rulesParser
	once   sync.Once
)

type rulesParser struct {
	browsers []BrowserEntry
	oss      []OSEntry
	bots     []BotEntry
	cache    *regexCache
}

func getParser() *rulesParser {
	once.Do(func() {
		parser = &rulesParser{cache: newRegexCache()}

		if data, err := databaseFiles.ReadFile("database/browsers.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.browsers); err != nil {
				fmt.Printf("Error parsing browsers.yml: %v\n", err)
			}
		}
		if data, err := databaseFiles.ReadFile("database/oss.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.oss); err != nil {
				fmt.Printf("Error parsing oss.yml: %v\n", err)
			}
		}
		if data, err := databaseFiles.ReadFile("database/bots.yml"); err == nil {
			if err := yaml.Unmarshal(data, &parser.bots); err != nil {
				fmt.Printf("Error parsing bots.yml: %v\n", err)
			}
		}
	})
	return parser
}

func (p *rulesParser) parseBot(userAgent string) *BotEntry {
	for _, bot := range p.bots {
		if regex, err := p.cache.get(bot.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return &bot
			}
		}
	}
	return nil
}

func (p *rulesParser) parseBrowser(userAgent string) string {
	for _, entry := range p.browsers {
		if regex, err := p.cache.get(entry.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return entry.Name
			}
		}
	}
	return "Unknown"
}

func (p *rulesParser) parseOS(userAgent string) string {
	for _, entry := range p.oss {
		if regex, err := p.cache.get(entry.Regex); err == nil {
			if regex.MatchString(userAgent) {
				return entry.Name
			}
		}
	}
	return "Unknown"
}

// parseDevice classifies mobile vs desktop from well-known UA tokens.
// Tablets count as mobile for reporting purposes.
func (p *rulesParser) parseDevice(userAgent string) (mobile, desktop bool) {
	ua := strings.ToLower(userAgent)

	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return true, false
	}
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") ||
		strings.Contains(ua, "iphone") || strings.Contains(ua, "ipod") ||
		strings.Contains(ua, "blackberry") || strings.Contains(ua, "windows phone") {
		return true, false
	}
	return false, true
}

// Parse classifies a raw User-Agent string. An empty input yields an
// Unknown OS and browser with neither device flag set.
func Parse(userAgent string) UserAgent {
	if userAgent == "" {
		return UserAgent{OS: "Unknown", Browser: "Unknown"}
	}

	parser := getParser()

	if bot := parser.parseBot(userAgent); bot != nil {
		return UserAgent{
			UserAgent: userAgent,
			OS:        "Unknown",
			Browser:   bot.Name,
			Bot:       true,
		}
	}

	mobile, desktop := parser.parseDevice(userAgent)
	return UserAgent{
		UserAgent: userAgent,
		OS:        parser.parseOS(userAgent),
		Browser:   parser.parseBrowser(userAgent),
		Mobile:    mobile,
		Desktop:   desktop,
	}
}
