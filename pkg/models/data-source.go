package models

// Sources of metadata, in the order they are applied during ingest.
const (
	DataSourceFilename       = "filename"
	DataSourcePath           = "path"
	DataSourceContainer      = "container"
	DataSourceVolumeCatalog  = "volume_catalog"
	DataSourceLibraryCatalog = "library_catalog"
	DataSourceClassifier     = "classifier"
	DataSourceManual         = "manual"
)

// Lower priority means that we respect it more than higher priority.
const (
	DataSourceManualPriority = iota
	DataSourceFilenamePriority
	DataSourcePathPriority
	DataSourceContainerPriority
	DataSourceVolumeCatalogPriority
	DataSourceLibraryCatalogPriority
	DataSourceClassifierPriority
)

var DataSourcePriority = map[string]int{
	DataSourceManual:         DataSourceManualPriority,
	DataSourceFilename:       DataSourceFilenamePriority,
	DataSourcePath:           DataSourcePathPriority,
	DataSourceContainer:      DataSourceContainerPriority,
	DataSourceVolumeCatalog:  DataSourceVolumeCatalogPriority,
	DataSourceLibraryCatalog: DataSourceLibraryCatalogPriority,
	DataSourceClassifier:     DataSourceClassifierPriority,
}
