package notion

var BuildProperties = buildProperties
