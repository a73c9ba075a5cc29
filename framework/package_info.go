// Package framework contains the building blocks of the API test harness that do not depend
// on any particular service under test. The base package contains the debug Logger
// abstraction used by every other component; the subpackages are:
//
//   - logging: the leveled console logger and its configuration
//   - version: the version gate used by init hooks
//   - httpclient: the HTTP client that tests use to talk to the service
//   - apitest: test registration, the runner, and result reporting
//
// Knowledge of a specific service's endpoints belongs in the suites, not here.
package framework
