package config

// DefaultConfigTOML is the commented template written by `codesim init`.
const DefaultConfigTOML = `# codesim configuration file
#
# All settings are optional; anything omitted falls back to the built-in
# defaults shown below.

[output]
# Report format: "json" or "yaml"
format = "json"

# Write the report to this file instead of stdout
# path = "report.json"

[compare]
# Concurrent pair computations (1 = sequential)
parallelism = 4

# Descend into directories when collecting variants
recursive = true

# Globstar patterns filtering collected files
# include_patterns = ["**/variant_*.py"]
# exclude_patterns = ["**/test_*.py"]

[compare.weights]
# Relative weights of the composite similarity terms. Normalization
# happens over whichever terms produce values, so they need not sum to 1.
codebleu = 0.30
edit_distance = 0.25
subtree_overlap = 0.20
jaccard = 0.25
`
