package mocks

//go:generate mockery --name TelemetryWriter --srcpkg github.com/gridpulse-lab/gridpulse/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name WindowReader --srcpkg github.com/gridpulse-lab/gridpulse/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
//go:generate mockery --name SnapshotReader --srcpkg github.com/gridpulse-lab/gridpulse/internal/core/storage --output ./storage --outpkg storagemocks --with-expecter
