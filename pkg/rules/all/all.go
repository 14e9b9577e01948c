// Package all registers every rule with the default registry.
package all

import (
	_ "github.com/specvital/testinglint/pkg/rules/awaitasyncevents"
	_ "github.com/specvital/testinglint/pkg/rules/awaitasyncqueries"
	_ "github.com/specvital/testinglint/pkg/rules/awaitasyncutils"
	_ "github.com/specvital/testinglint/pkg/rules/consistentdatatestid"
	_ "github.com/specvital/testinglint/pkg/rules/noawaitsyncevents"
	_ "github.com/specvital/testinglint/pkg/rules/noawaitsyncqueries"
	_ "github.com/specvital/testinglint/pkg/rules/nocontainer"
	_ "github.com/specvital/testinglint/pkg/rules/nodebuggingutils"
	_ "github.com/specvital/testinglint/pkg/rules/nodomimport"
	_ "github.com/specvital/testinglint/pkg/rules/noglobalregexpflaginquery"
	_ "github.com/specvital/testinglint/pkg/rules/nomanualcleanup"
	_ "github.com/specvital/testinglint/pkg/rules/nonodeaccess"
	_ "github.com/specvital/testinglint/pkg/rules/nopromiseinfireevent"
	_ "github.com/specvital/testinglint/pkg/rules/norenderinlifecycle"
	_ "github.com/specvital/testinglint/pkg/rules/notestidqueries"
	_ "github.com/specvital/testinglint/pkg/rules/nowaitforemptycallback"
	_ "github.com/specvital/testinglint/pkg/rules/nowaitformultipleassertions"
	_ "github.com/specvital/testinglint/pkg/rules/nowaitforsideeffects"
	_ "github.com/specvital/testinglint/pkg/rules/nowaitforsnapshot"
	_ "github.com/specvital/testinglint/pkg/rules/preferexplicitassert"
	_ "github.com/specvital/testinglint/pkg/rules/preferfindby"
	_ "github.com/specvital/testinglint/pkg/rules/preferpresencequeries"
	_ "github.com/specvital/testinglint/pkg/rules/preferquerybydisappearance"
	_ "github.com/specvital/testinglint/pkg/rules/preferscreenqueries"
	_ "github.com/specvital/testinglint/pkg/rules/preferuserevent"
	_ "github.com/specvital/testinglint/pkg/rules/preferusereventsetup"
	_ "github.com/specvital/testinglint/pkg/rules/renderresultnamingconvention"
)
