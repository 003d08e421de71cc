package estimator

// LibraryVersion is the version the bundled estimators report to the
// autologging version gate.
const LibraryVersion = "1.0.0"
