package discovery

import "gopkg.in/yaml.v3"

// configDoc mirrors the handful of keys fmf actually reads from
// .fmf/config; unlike fmf files proper, the config file is trusted
// tooling metadata, so a plain Unmarshal (no duplicate-key or
// ordering concerns) is enough here.
type configDoc struct {
	Explore struct {
		Include []string `yaml:"include"`
	} `yaml:"explore"`
}

func parseExploreInclude(content []byte) ([]string, error) {
	var doc configDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}
	return doc.Explore.Include, nil
}
