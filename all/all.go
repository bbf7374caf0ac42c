// Package all imports all supported version feeds.
//
// Import this package for its side effects to register every feed:
//
//	import (
//		"github.com/reactor/docsproxy"
//		_ "github.com/reactor/docsproxy/all"
//	)
//
//	// Now all feeds are available
//	feeds := docsproxy.SupportedFeeds()
//	// ["artifactory", "maven", "sonatype"]
package all

import (
	_ "github.com/reactor/docsproxy/internal/artifactory"
	_ "github.com/reactor/docsproxy/internal/maven"
	_ "github.com/reactor/docsproxy/internal/sonatype"
)
