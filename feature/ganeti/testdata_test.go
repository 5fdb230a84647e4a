package ganeti

const bulkInstances = `[
  {
    "name": "vm1.eqiad.wmnet",
    "beparams": {"vcpus": 4, "memory": 8192, "auto_balance": true},
    "disk.sizes": [10240, 20480],
    "status": "running"
  },
  {
    "name": "vm2.eqiad.wmnet",
    "beparams": {"vcpus": 1, "memory": 1024},
    "disk.sizes": []
  },
  {
    "name": "broken.eqiad.wmnet",
    "beparams": {"vcpus": "two", "memory": 1024},
    "disk.sizes": [1024]
  },
  {
    "name": "nobe.eqiad.wmnet",
    "disk.sizes": [1024]
  }
]`
